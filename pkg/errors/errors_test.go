package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/liftmap/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "exercise",
			ID:       "back-squat",
		}
		assert.Equal(t, "exercise with ID back-squat not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("equipment", "barbell")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("name", "", "cannot be empty")
		assert.Equal(t, "validation failed for field name: cannot be empty", err.Error())
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidValue)
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid record"}
		assert.Equal(t, "validation failed: invalid record", err.Error())
	})
}

func TestAPIError(t *testing.T) {
	t.Run("server error is upstream unavailable", func(t *testing.T) {
		err := pkgerrors.NewAPIError("primary", 503, "maintenance")
		assert.Contains(t, err.Error(), "primary")
		assert.Contains(t, err.Error(), "503")
		assert.True(t, pkgerrors.IsUpstreamUnavailable(err))
	})

	t.Run("client error is not", func(t *testing.T) {
		err := pkgerrors.NewAPIError("primary", 404, "missing")
		assert.False(t, pkgerrors.IsUpstreamUnavailable(err))
	})

	t.Run("unwrap", func(t *testing.T) {
		base := errors.New("connection reset")
		err := &pkgerrors.APIError{Source: "fallback", Message: "request failed", Err: base}
		assert.Equal(t, base, err.Unwrap())
		assert.Equal(t, "API error from fallback: request failed", err.Error())
	})
}

func TestSourceUnavailableError(t *testing.T) {
	first := errors.New("timeout")
	second := pkgerrors.NewAPIError("fallback", 500, "boom")
	err := pkgerrors.NewSourceUnavailableError([]pkgerrors.SourceAttempt{
		{Source: "primary", Err: first},
		{Source: "fallback", Err: second},
	})

	assert.True(t, pkgerrors.IsSourceUnavailable(err))
	assert.True(t, errors.Is(err, first))
	assert.True(t, pkgerrors.IsUpstreamUnavailable(err))
	assert.Contains(t, err.Error(), "primary: timeout")
	assert.Contains(t, err.Error(), "fallback")

	empty := pkgerrors.NewSourceUnavailableError(nil)
	assert.Equal(t, "no exercise sources configured", empty.Error())
}

func TestValidationFailedError(t *testing.T) {
	tests := []struct {
		name string
		err  *pkgerrors.ValidationFailedError
		want string
	}{
		{
			name: "below minimum",
			err:  &pkgerrors.ValidationFailedError{Total: 3, MinCount: 25, BelowMinimum: true},
			want: "payload rejected: 3 records is below the minimum of 25",
		},
		{
			name: "invalid records",
			err:  &pkgerrors.ValidationFailedError{Total: 30, Invalid: 2, Reasons: []string{"#4: name is required"}},
			want: "payload rejected: 2 of 30 records invalid (first: #4: name is required)",
		},
		{
			name: "both",
			err:  &pkgerrors.ValidationFailedError{Total: 3, Invalid: 1, MinCount: 25, BelowMinimum: true},
			want: "payload rejected: 3 records is below the minimum of 25 and 1 of 3 records invalid",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, errors.Is(tt.err, pkgerrors.ErrValidationFailed))
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want pkgerrors.Kind
	}{
		{"nil", nil, pkgerrors.KindNone},
		{"source", pkgerrors.NewSourceUnavailableError(nil), pkgerrors.KindSourceUnavailable},
		{"validation", &pkgerrors.ValidationFailedError{}, pkgerrors.KindValidationFailed},
		{"persistence", pkgerrors.NewPersistenceError("commit", errors.New("disk full")), pkgerrors.KindPersistenceFailed},
		{"link", pkgerrors.NewLinkError("write", errors.New("locked")), pkgerrors.KindLinkError},
		{"link over persistence", pkgerrors.NewLinkError("write", pkgerrors.NewPersistenceError("commit", nil)), pkgerrors.KindLinkError},
		{"wrapped persistence", fmt.Errorf("import: %w", pkgerrors.NewPersistenceError("commit", nil)), pkgerrors.KindPersistenceFailed},
		{"other", errors.New("boom"), pkgerrors.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pkgerrors.KindOf(tt.err))
		})
	}
}

func TestParseError(t *testing.T) {
	t.Run("with file", func(t *testing.T) {
		err := &pkgerrors.ParseError{Format: "yaml", File: "starter.yaml", Message: "invalid indentation"}
		assert.Equal(t, "parse error in yaml file starter.yaml: invalid indentation", err.Error())
	})

	t.Run("format only", func(t *testing.T) {
		err := &pkgerrors.ParseError{Format: "json", Message: "unexpected token"}
		assert.Equal(t, "json parse error: unexpected token", err.Error())
	})

	t.Run("wrap", func(t *testing.T) {
		base := errors.New("EOF")
		wrapped := pkgerrors.WrapParse("json", "payload.json", base)
		parseErr, ok := wrapped.(*pkgerrors.ParseError)
		require.True(t, ok)
		assert.Equal(t, "payload.json", parseErr.File)
		assert.Equal(t, base, parseErr.Unwrap())
	})
}

func TestIOError(t *testing.T) {
	base := errors.New("permission denied")
	err := pkgerrors.NewIOError("read", "/tmp/exercises.json", base)
	assert.Contains(t, err.Error(), "read")
	assert.Contains(t, err.Error(), "/tmp/exercises.json")
	assert.Equal(t, base, err.Unwrap())

	assert.Nil(t, pkgerrors.WrapIO("read", "file", nil))
}

func TestResourceError(t *testing.T) {
	err := pkgerrors.WrapResource("insert", "exercise", "abc", pkgerrors.ErrAlreadyExists)
	resErr, ok := err.(*pkgerrors.ResourceError)
	require.True(t, ok)
	assert.Equal(t, "insert", resErr.Operation)
	assert.True(t, errors.Is(err, pkgerrors.ErrAlreadyExists))
	assert.Contains(t, err.Error(), "failed to insert exercise abc")
}

func TestWrapPersistence(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapPersistence("commit", nil))

	first := pkgerrors.WrapPersistence("upsert", errors.New("constraint"))
	assert.True(t, errors.Is(first, pkgerrors.ErrPersistenceFailed))

	second := pkgerrors.WrapPersistence("commit", first)
	assert.Same(t, first, second)
}

func TestTransitionError(t *testing.T) {
	err := &pkgerrors.TransitionError{From: "idle", To: "importing"}
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidTransition))
	assert.Equal(t, `cannot move from stage "idle" to "importing"`, err.Error())
}
