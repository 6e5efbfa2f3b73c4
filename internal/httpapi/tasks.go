package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/voidcat-ai/reasoning-core/internal/taskmem"
	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

func (s *Server) createTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, voiderr.New(voiderr.InvalidArgument, err.Error()))
		return
	}
	if req.Name == "" {
		writeError(c, voiderr.New(voiderr.InvalidArgument, "name is required"))
		return
	}

	task, err := s.store.CreateTask(taskmem.Task{
		Name:           req.Name,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		Complexity:     req.Complexity,
		EstimatedHours: req.EstimatedHours,
		Tags:           req.Tags,
		ParentID:       req.ParentID,
		ProjectID:      req.ProjectID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	s.hub.Publish(ChangeEvent{Type: "task", Payload: task})
	c.JSON(http.StatusCreated, task)
}

func (s *Server) listTasks(c *gin.Context) {
	filter := taskmem.TaskFilter{
		Status:    taskmem.Status(c.Query("status")),
		ProjectID: c.Query("projectId"),
		FreeText:  c.Query("q"),
	}
	if v := c.Query("minPriority"); v != "" {
		filter.MinPriority = queryInt(v)
	}
	if v := c.Query("maxPriority"); v != "" {
		filter.MaxPriority = queryInt(v)
	}
	c.JSON(http.StatusOK, s.store.ListTasks(filter))
}

func (s *Server) getTask(c *gin.Context) {
	task, err := s.store.GetTask(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) updateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, voiderr.New(voiderr.InvalidArgument, err.Error()))
		return
	}

	task, err := s.store.UpdateTask(c.Param("id"), func(t *taskmem.Task) {
		if req.Name != "" {
			t.Name = req.Name
		}
		if req.Description != "" {
			t.Description = req.Description
		}
		if req.Status != "" {
			t.Status = req.Status
		}
		if req.Priority != 0 {
			t.Priority = req.Priority
		}
		if req.Complexity != 0 {
			t.Complexity = req.Complexity
		}
		if req.EstimatedHours != 0 {
			t.EstimatedHours = req.EstimatedHours
		}
		if req.ActualHours != 0 {
			t.ActualHours = req.ActualHours
		}
		if req.Tags != nil {
			t.Tags = req.Tags
		}
		if req.ProjectID != "" {
			t.ProjectID = req.ProjectID
		}
	}, req.Force)
	if err != nil {
		writeError(c, err)
		return
	}
	s.hub.Publish(ChangeEvent{Type: "task", Payload: task})
	c.JSON(http.StatusOK, task)
}

func (s *Server) moveTask(c *gin.Context) {
	var req struct {
		ParentID string `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, voiderr.New(voiderr.InvalidArgument, err.Error()))
		return
	}
	task, err := s.store.MoveTask(c.Param("id"), req.ParentID)
	if err != nil {
		writeError(c, err)
		return
	}
	s.hub.Publish(ChangeEvent{Type: "task", Payload: task})
	c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c *gin.Context) {
	cascade := c.Query("cascade") == "true"
	id := c.Param("id")
	if err := s.store.DeleteTask(id, cascade); err != nil {
		writeError(c, err)
		return
	}
	s.hub.Publish(ChangeEvent{Type: "task", Payload: gin.H{"id": id, "deleted": true}})
	c.Status(http.StatusNoContent)
}

func (s *Server) taskStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Stats())
}

func queryInt(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}
