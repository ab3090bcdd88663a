package timesheet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestNewInternal_Classifies(t *testing.T) {
	assert.Equal(t, MsgTimeout, NewInternal(fmt.Errorf("gemini: %w", context.DeadlineExceeded)).Message)
	assert.Equal(t, MsgTimeout, NewInternal(timeoutErr{}).Message)
	assert.Equal(t, MsgNetwork, NewInternal(&net.OpError{Op: "dial", Err: errors.New("connection refused")}).Message)
	assert.Equal(t, MsgInternal, NewInternal(errors.New("boom")).Message)
}

func TestError_WrapsCause(t *testing.T) {
	cause := errors.New("pq: relation does not exist")
	err := fmt.Errorf("interpret: %w", NewProjectsUnavailable(cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindDependency))
	assert.Equal(t, 500, AsError(err).Status)
	assert.Equal(t, "Failed to fetch projects: pq: relation does not exist", AsError(err).Error())
}

func TestAsError_WrapsForeignErrors(t *testing.T) {
	e := AsError(errors.New("oops"))
	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, MsgInternal, e.Message)
}
