package model

import "time"

// TodoStatus is the state of a task item.
type TodoStatus string

const (
	TodoOpen       TodoStatus = "OPEN"
	TodoInProgress TodoStatus = "IN_PROGRESS"
	TodoDone       TodoStatus = "DONE"
)

// TodoPriority is the urgency of a task item.
type TodoPriority string

const (
	TodoPriorityLow    TodoPriority = "LOW"
	TodoPriorityMedium TodoPriority = "MEDIUM"
	TodoPriorityHigh   TodoPriority = "HIGH"
)

// Todo is a project task item.
type Todo struct {
	ID         uint         `json:"id"`
	CompanyID  uint         `json:"company_id"`
	ProjectID  uint         `json:"project_id"`
	CreatorID  uint         `json:"creator_id"`
	AssigneeID *uint        `json:"assignee_id,omitempty"`
	Text       string       `json:"text"`
	Priority   TodoPriority `json:"priority"`
	Status     TodoStatus   `json:"status"`
	DueDate    *time.Time   `json:"due_date,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
