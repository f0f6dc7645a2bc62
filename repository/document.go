package repository

import (
	"time"

	"github.com/fastygo/todo-api/domain"
)

// UserDocument is the stored shape of a User aggregate, shared by the
// document-oriented drivers and the Redis cache.
type UserDocument struct {
	ID           string            `json:"id" bson:"_id"`
	Email        string            `json:"email" bson:"email"`
	PasswordHash string            `json:"password_hash" bson:"passwordHash"`
	Metadata     map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Tasks        []TaskDocument    `json:"tasks" bson:"tasks"`
	CreatedAt    time.Time         `json:"created_at" bson:"createdAt"`
	UpdatedAt    time.Time         `json:"updated_at" bson:"updatedAt"`
}

type TaskDocument struct {
	ID           string `json:"id" bson:"_id"`
	TaskName     string `json:"taskName" bson:"taskName"`
	TaskDesc     string `json:"taskDesc,omitempty" bson:"taskDesc,omitempty"`
	ReminderTime string `json:"reminderTime,omitempty" bson:"reminderTime,omitempty"`
	Status       string `json:"status" bson:"status"`
}

func NewUserDocument(user *domain.User) UserDocument {
	doc := UserDocument{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Metadata:     copyMap(user.Metadata),
		Tasks:        NewTaskDocuments(user.Tasks),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	return doc
}

// NewTaskDocuments never returns nil so an empty list is stored as [].
func NewTaskDocuments(tasks []domain.Task) []TaskDocument {
	out := make([]TaskDocument, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskDocument{
			ID:           t.ID,
			TaskName:     t.TaskName,
			TaskDesc:     t.TaskDesc,
			ReminderTime: t.ReminderTime,
			Status:       string(t.Status),
		})
	}
	return out
}

func (d UserDocument) User() *domain.User {
	return &domain.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Metadata:     copyMap(d.Metadata),
		Tasks:        TaskDocumentsToDomain(d.Tasks),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func TaskDocumentsToDomain(docs []TaskDocument) []domain.Task {
	out := make([]domain.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Task{
			ID:           d.ID,
			TaskName:     d.TaskName,
			TaskDesc:     d.TaskDesc,
			ReminderTime: d.ReminderTime,
			Status:       domain.TaskStatus(d.Status),
		})
	}
	return out
}

func copyMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
