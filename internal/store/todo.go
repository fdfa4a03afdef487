package store

import (
	"time"

	"opensite/api/internal/model"
)

// CreateTodo adds a task item to a project.
func (s *Store) CreateTodo(actorID, projectID uint, text string, priority model.TodoPriority, assigneeID *uint, dueDate *time.Time) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageTodos); err != nil {
		return nil, err
	}

	project, err := s.project(actor, projectID)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, &ValidationError{Msg: "todo text is required"}
	}
	if priority == "" {
		priority = model.TodoPriorityMedium
	}
	if assigneeID != nil {
		assignee, ok := s.users[*assigneeID]
		if !ok || assignee.CompanyID != project.CompanyID {
			return nil, &NotFoundError{Resource: "user", ID: *assigneeID}
		}
	}

	now := s.now()
	todo := &model.Todo{
		ID:         s.nextID(),
		CompanyID:  project.CompanyID,
		ProjectID:  project.ID,
		CreatorID:  actor.ID,
		AssigneeID: assigneeID,
		Text:       text,
		Priority:   priority,
		Status:     model.TodoOpen,
		DueDate:    dueDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.todos[todo.ID] = todo
	s.appendAudit(actor, model.AuditTodoCreated, &model.AuditTarget{Type: "todo", ID: todo.ID, Name: todo.Text}, &project.ID)

	copied := *todo
	return &copied, nil
}

// TodoPatch carries the updatable fields of a todo. Nil fields are left
// untouched.
type TodoPatch struct {
	Text       *string
	Priority   *model.TodoPriority
	Status     *model.TodoStatus
	AssigneeID *uint
	DueDate    *time.Time
}

// UpdateTodo applies a patch to a todo.
func (s *Store) UpdateTodo(actorID, todoID uint, patch TodoPatch) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageTodos); err != nil {
		return nil, err
	}

	todo, ok := s.todos[todoID]
	if !ok {
		return nil, &NotFoundError{Resource: "todo", ID: todoID}
	}
	if err := s.sameTenant(actor, todo.CompanyID); err != nil {
		return nil, &NotFoundError{Resource: "todo", ID: todoID}
	}

	if patch.Text != nil {
		if *patch.Text == "" {
			return nil, &ValidationError{Msg: "todo text is required"}
		}
		todo.Text = *patch.Text
	}
	if patch.Priority != nil {
		todo.Priority = *patch.Priority
	}
	if patch.Status != nil {
		todo.Status = *patch.Status
	}
	if patch.AssigneeID != nil {
		assignee, ok := s.users[*patch.AssigneeID]
		if !ok || assignee.CompanyID != todo.CompanyID {
			return nil, &NotFoundError{Resource: "user", ID: *patch.AssigneeID}
		}
		todo.AssigneeID = patch.AssigneeID
	}
	if patch.DueDate != nil {
		todo.DueDate = patch.DueDate
	}
	todo.UpdatedAt = s.now()
	s.appendAudit(actor, model.AuditTodoUpdated, &model.AuditTarget{Type: "todo", ID: todo.ID, Name: todo.Text}, &todo.ProjectID)

	copied := *todo
	return &copied, nil
}

// ListTodos returns a project's task items visible to the actor.
func (s *Store) ListTodos(actorID, projectID uint) ([]model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.project(actor, projectID); err != nil {
		return nil, err
	}

	var todos []model.Todo
	for _, t := range s.todos {
		if t.ProjectID == projectID {
			todos = append(todos, *t)
		}
	}
	sortByID(todos, func(t model.Todo) uint { return t.ID })
	return todos, nil
}
