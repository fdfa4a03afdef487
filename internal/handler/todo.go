package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"opensite/api/internal/model"
	"opensite/api/internal/store"
)

// TodoHandler handles project task item requests.
type TodoHandler struct {
	store *store.Store
}

// NewTodoHandler creates a new todo handler.
func NewTodoHandler(s *store.Store) *TodoHandler {
	return &TodoHandler{store: s}
}

type createTodoRequest struct {
	ProjectID  uint   `json:"project_id" binding:"required"`
	Text       string `json:"text" binding:"required"`
	Priority   string `json:"priority"`
	AssigneeID *uint  `json:"assignee_id"`
	DueDate    string `json:"due_date"`
}

// Create adds a task item to a project
// @Summary Create todo
// @Tags Todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param todo body createTodoRequest true "Todo"
// @Success 201 {object} map[string]interface{}
// @Router /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be YYYY-MM-DD"})
			return
		}
		dueDate = &parsed
	}

	todo, err := h.store.CreateTodo(getUserIDFromContext(c), req.ProjectID, req.Text,
		model.TodoPriority(req.Priority), req.AssigneeID, dueDate)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": todo})
}

type updateTodoRequest struct {
	Text       *string `json:"text"`
	Priority   *string `json:"priority"`
	Status     *string `json:"status"`
	AssigneeID *uint   `json:"assignee_id"`
	DueDate    *string `json:"due_date"`
}

// Update patches a task item
// @Summary Update todo
// @Tags Todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Todo ID"
// @Param todo body updateTodoRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Router /todos/{id} [put]
func (h *TodoHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid todo id"})
		return
	}

	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := store.TodoPatch{
		Text:       req.Text,
		AssigneeID: req.AssigneeID,
	}
	if req.Priority != nil {
		p := model.TodoPriority(*req.Priority)
		patch.Priority = &p
	}
	if req.Status != nil {
		s := model.TodoStatus(*req.Status)
		patch.Status = &s
	}
	if req.DueDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be YYYY-MM-DD"})
			return
		}
		patch.DueDate = &parsed
	}

	todo, err := h.store.UpdateTodo(getUserIDFromContext(c), uint(id), patch)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": todo})
}

// List returns a project's task items
// @Summary List todos
// @Tags Todos
// @Produce json
// @Security BearerAuth
// @Param project_id query int true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Router /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Query("project_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
		return
	}

	todos, err := h.store.ListTodos(getUserIDFromContext(c), uint(projectID))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": todos, "total": len(todos)})
}
