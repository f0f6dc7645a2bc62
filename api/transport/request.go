package transport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fastygo/todo-api/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// TaskRequest is the body of task create and edit. Missing fields decode to
// empty strings and are stored as such.
type TaskRequest struct {
	TaskName     string `json:"taskName"`
	TaskDesc     string `json:"taskDesc"`
	ReminderTime string `json:"reminderTime"`
}

func (r TaskRequest) Fields() domain.TaskFields {
	return domain.TaskFields{
		TaskName:     r.TaskName,
		TaskDesc:     r.TaskDesc,
		ReminderTime: r.ReminderTime,
	}
}

// TaskIDRequest is the body of the status toggle and delete routes.
type TaskIDRequest struct {
	ID string `json:"id"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileUpdateRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Validate runs struct tag validation and reports the failing fields
// as an INVALID domain error.
func Validate(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return domain.NewError(domain.ErrCodeInvalid, strings.Join(msgs, "; "))
}
