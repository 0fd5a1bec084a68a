// Package webapi exposes the content pipeline over HTTP.
package webapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fluentband/fluentband/internal/models"
	"github.com/fluentband/fluentband/internal/store"
)

// Version is reported by the health endpoint. The serve command assigns it
// from the binary's build version before the server starts.
var Version = "dev"

// Handlers holds the HTTP handler methods for the content API.
type Handlers struct {
	tasks        store.TaskStore
	orchestrator Orchestrator
}

// NewHandlers creates Handlers over the given store and orchestrator.
func NewHandlers(tasks store.TaskStore, orchestrator Orchestrator) *Handlers {
	return &Handlers{tasks: tasks, orchestrator: orchestrator}
}

func (h *Handlers) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
}

// handleTaskContent returns the task with missing content filled in where
// possible. Stage failures still produce a 200 with whatever content exists;
// the client sees progress through the status field.
func (h *Handlers) handleTaskContent(c *gin.Context) {
	task, err := h.orchestrator.TaskContent(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResponse(task))
}

// handleStartTask marks a task in progress, generating its script first if
// needed. Unlike content fetches, a script failure here is an error.
func (h *Handlers) handleStartTask(c *gin.Context) {
	task, err := h.orchestrator.StartTask(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResponse(task))
}

func (h *Handlers) handleCreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Skill == "" {
		req.Skill = models.SkillListening
	}

	task := &models.Task{
		ID:         uuid.NewString(),
		OwnerID:    req.OwnerID,
		Skill:      req.Skill,
		WeekNumber: req.WeekNumber,
		DayNumber:  req.DayNumber,
		Title:      req.Title,
		Status:     models.StatusPending,
	}
	if err := h.tasks.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, taskResponse(task))
}

func writeTaskError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
