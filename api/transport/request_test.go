package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/todo-api/domain"
)

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(RegisterRequest{Email: "a@example.com", Password: "password123"}))

	err := Validate(RegisterRequest{Email: "nope", Password: "short"})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Contains(t, err.Error(), "email failed on email")
	assert.Contains(t, err.Error(), "password failed on min")

	err = Validate(LoginRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email failed on required")
}

func TestTaskRequestFields(t *testing.T) {
	req := TaskRequest{TaskName: "n", TaskDesc: "d", ReminderTime: "r"}
	assert.Equal(t, domain.TaskFields{TaskName: "n", TaskDesc: "d", ReminderTime: "r"}, req.Fields())
}
