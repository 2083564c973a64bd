package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapping(t *testing.T) {
	assert.ErrorIs(t, NewNotFoundError("user abc"), ErrNotFound)
	assert.ErrorIs(t, NewBadRequestError("nope"), ErrBadRequest)
	assert.ErrorIs(t, NewConflictError("user abc"), ErrConflict)

	corrupt := &CorruptRecordError{Key: "user/abc", Reason: "missing partition key"}
	assert.ErrorIs(t, corrupt, ErrCorruptRecord)
	assert.Contains(t, corrupt.Error(), "user/abc")

	// taxonomy classes stay distinct
	assert.False(t, errors.Is(NewNotFoundError("user abc"), ErrConflict))
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{
		Fields: []FieldError{
			{Field: "name", Reason: "is required"},
			{Field: "email", Reason: "must be a valid email address"},
		},
	}
	assert.Equal(
		t,
		"validation failed: name is required; email must be a valid email address",
		err.Error(),
	)
}
