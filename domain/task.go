package domain

// TaskStatus is the completion state of a task.
type TaskStatus string

const (
	TaskStatusRemaining TaskStatus = "remaining"
	TaskStatusCompleted TaskStatus = "completed"
)

// Toggle flips remaining to completed. Any other value, including unexpected
// stored content, becomes remaining.
func (s TaskStatus) Toggle() TaskStatus {
	if s == TaskStatusRemaining {
		return TaskStatusCompleted
	}
	return TaskStatusRemaining
}

// Task is an item embedded in a user's task list. It has no lifecycle outside
// of its owning User.
type Task struct {
	ID           string     `json:"id"`
	TaskName     string     `json:"taskName"`
	TaskDesc     string     `json:"taskDesc,omitempty"`
	ReminderTime string     `json:"reminderTime,omitempty"`
	Status       TaskStatus `json:"status"`
}

// TaskFields holds the editable fields of a task.
type TaskFields struct {
	TaskName     string
	TaskDesc     string
	ReminderTime string
}

// NewTask builds an unsaved task. The id is assigned by the persistence layer.
func NewTask(fields TaskFields) Task {
	return Task{
		TaskName:     fields.TaskName,
		TaskDesc:     fields.TaskDesc,
		ReminderTime: fields.ReminderTime,
		Status:       TaskStatusRemaining,
	}
}
