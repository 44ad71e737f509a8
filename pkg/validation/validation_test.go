package validation

import (
	"testing"

	"github.com/policydesk/admin-api/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"notblank,max=5"`
	Email string `json:"email" validate:"required,email"`
	Kind  string `json:"kind" validate:"omitempty,oneof=a b"`
}

type withMessages struct {
	Title string `json:"title" validate:"required"`
}

func (withMessages) ValidationMessages() map[string]string {
	return map[string]string{"Title.required": "Title is required"}
}

func TestStruct(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		assert.NoError(t, Struct(sample{Name: "ok", Email: "a@b.co"}))
	})

	t.Run("every violation is reported in field order", func(t *testing.T) {
		err := Struct(sample{Name: "   ", Email: "nope", Kind: "c"})
		require.Error(t, err)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeValidationFailed, appErr.Code)
		assert.Equal(t, "name is required, Please provide a valid email, Invalid kind", appErr.Message)
	})

	t.Run("max length", func(t *testing.T) {
		err := Struct(sample{Name: "toolong", Email: "a@b.co"})
		assert.EqualError(t, err, "name cannot exceed 5 characters")
	})

	t.Run("custom messages win", func(t *testing.T) {
		assert.EqualError(t, Struct(withMessages{}), "Title is required")
	})
}

func TestJoin(t *testing.T) {
	assert.NoError(t, Join())
	assert.EqualError(t, Join("a", "b"), "a, b")
}
