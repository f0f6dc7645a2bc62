package domain

import "time"

// User is the aggregate root that owns the task list. It is loaded and saved
// as a whole.
type User struct {
	ID           string            `json:"id"`
	Email        string            `json:"email,omitempty"`
	PasswordHash string            `json:"-"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Tasks        []Task            `json:"-"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (u *User) Touch() {
	if u == nil {
		return
	}
	u.UpdatedAt = time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = u.UpdatedAt
	}
}

// TaskIndex returns the position of the first task with the given id, or -1.
func (u *User) TaskIndex(id string) int {
	if u == nil || id == "" {
		return -1
	}
	for i := range u.Tasks {
		if u.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// AppendTask adds a task at the end of the list and returns its position.
func (u *User) AppendTask(task Task) int {
	u.Tasks = append(u.Tasks, task)
	return len(u.Tasks) - 1
}

// RemoveTaskAt drops the task at position i and shifts later tasks down.
func (u *User) RemoveTaskAt(i int) {
	if i < 0 || i >= len(u.Tasks) {
		return
	}
	u.Tasks = append(u.Tasks[:i], u.Tasks[i+1:]...)
}

// TasksByStatus returns the tasks with an exact status match, in stored order.
// The result is never nil.
func (u *User) TasksByStatus(status TaskStatus) []Task {
	out := make([]Task, 0, len(u.Tasks))
	for _, t := range u.Tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// AssignTaskIDs gives every task without an id a fresh one from next.
func (u *User) AssignTaskIDs(next func() string) {
	if u == nil || next == nil {
		return
	}
	for i := range u.Tasks {
		if u.Tasks[i].ID == "" {
			u.Tasks[i].ID = next()
		}
	}
}
