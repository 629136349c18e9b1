package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf_ServiceErrors(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFoundf("cluster %s not found", "abc")))
	assert.Equal(t, KindConflict, KindOf(Conflictf("generation mismatch")))
	assert.Equal(t, KindInvalid, KindOf(Invalidf("bad input")))
}

func TestKindOf_WrappedServiceError(t *testing.T) {
	err := fmt.Errorf("outer: %w", Conflictf("generation mismatch"))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, IsKind(err, KindConflict))
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestKindOf_DeadlineExceededIsTimeout(t *testing.T) {
	err := fmt.Errorf("query: %w", context.DeadlineExceeded)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestDBErr_StatementTimeout(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "57014", Message: "canceling statement due to statement timeout"}
	err := dbErr("update cluster", pgErr)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Contains(t, err.Error(), "update cluster timed out")
}

func TestDBErr_DeadlineExceeded(t *testing.T) {
	err := dbErr("get cluster", context.DeadlineExceeded)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestDBErr_WrapsOperation(t *testing.T) {
	cause := errors.New("connection refused")
	err := dbErr("list clusters", cause)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list clusters")
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestError_MessageFormat(t *testing.T) {
	plain := &Error{Kind: KindConflict, Message: "busy"}
	assert.Equal(t, "busy", plain.Error())

	wrapped := &Error{Kind: KindTimeout, Message: "query timed out", Err: context.DeadlineExceeded}
	assert.Equal(t, "query timed out: context deadline exceeded", wrapped.Error())
	assert.Equal(t, context.DeadlineExceeded, wrapped.Unwrap())
}
