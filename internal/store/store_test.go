package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.UpsertClient(ctx, "client-a", "Client A"))
	require.NoError(t, db.UpsertProject(ctx, Project{ID: "proj-1", Name: "Project Alpha", JobNumber: "JOB-001"}, "client-a"))
	require.NoError(t, db.UpsertProject(ctx, Project{ID: "proj-2", Name: "Beta Redesign"}, ""))
}

func TestListProjects_JoinsClientName(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)

	projects, err := db.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)

	// ordered by name
	assert.Equal(t, Project{ID: "proj-2", Name: "Beta Redesign"}, projects[0])
	assert.Equal(t, Project{ID: "proj-1", Name: "Project Alpha", JobNumber: "JOB-001", ClientName: "Client A"}, projects[1])
}

func TestListProjects_Empty(t *testing.T) {
	db := openTestDB(t)

	projects, err := db.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestListRecentEntries_NewestFirstAndScopedToUser(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	ctx := context.Background()

	dates := []string{"2026-10-01", "2026-10-03", "2026-10-02", "2026-10-05", "2026-10-04", "2026-10-06"}
	for i, d := range dates {
		e := &Entry{UserID: "user-1", ProjectID: "proj-1", Hours: float64(i + 1), Date: d, Billable: true, Description: "work " + d}
		require.NoError(t, db.InsertEntry(ctx, e))
	}
	require.NoError(t, db.InsertEntry(ctx, &Entry{UserID: "user-2", Hours: 8, Date: "2026-10-10", Description: "someone else"}))

	recent, err := db.ListRecentEntries(ctx, "user-1", 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)

	assert.Equal(t, "2026-10-06", recent[0].Date)
	assert.Equal(t, "2026-10-02", recent[4].Date)
	assert.Equal(t, "Project Alpha", recent[0].ProjectName)
	assert.Equal(t, "proj-1", recent[0].ProjectID)
	assert.InDelta(t, 6.0, recent[0].Hours, 0.001)
}

func TestListRecentEntries_UnassignedProject(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.InsertEntry(ctx, &Entry{UserID: "user-1", Hours: 1.5, Date: "2026-10-01", Description: "admin"}))

	recent, err := db.ListRecentEntries(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Empty(t, recent[0].ProjectID)
	assert.Empty(t, recent[0].ProjectName)
}

func TestInsertEntry_AssignsID(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)

	e := &Entry{UserID: "user-1", ProjectID: "proj-2", Hours: 2, Date: "2026-10-15", Billable: false, Description: "review", TaskType: "Meeting"}
	require.NoError(t, db.InsertEntry(context.Background(), e))
	assert.Len(t, e.ID, 26)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestInsertEntry_UnknownProjectRejected(t *testing.T) {
	db := openTestDB(t)

	err := db.InsertEntry(context.Background(), &Entry{UserID: "user-1", ProjectID: "ghost", Hours: 1, Date: "2026-10-15", Description: "x"})
	require.Error(t, err)
}

func TestGetProject(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)

	p, err := db.GetProject(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "Client A", p.ClientName)

	_, err = db.GetProject(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite := &DB{driver: DriverSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "", nil)
	require.Error(t, err)

	_, err = Open(context.Background(), DriverPostgres, "  ", nil)
	require.Error(t, err)
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2026-10-15", normalizeDate("2026-10-15T00:00:00Z"))
	assert.Equal(t, "2026-10-15", normalizeDate("2026-10-15"))
	assert.Equal(t, "soon", normalizeDate("soon"))
}
