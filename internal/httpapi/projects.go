package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voidcat-ai/reasoning-core/internal/taskmem"
	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

func (s *Server) createProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, voiderr.New(voiderr.InvalidArgument, err.Error()))
		return
	}
	if req.Name == "" {
		writeError(c, voiderr.New(voiderr.InvalidArgument, "name is required"))
		return
	}

	proj, err := s.store.CreateProject(taskmem.Project{Name: req.Name, Description: req.Description})
	if err != nil {
		writeError(c, err)
		return
	}
	s.hub.Publish(ChangeEvent{Type: "system", Payload: proj})
	c.JSON(http.StatusCreated, proj)
}

func (s *Server) listProjects(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.ListProjects())
}

func (s *Server) getProject(c *gin.Context) {
	proj, err := s.store.GetProject(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, proj)
}

func (s *Server) deleteProject(c *gin.Context) {
	id := c.Param("id")
	if err := s.store.DeleteProject(id); err != nil {
		writeError(c, err)
		return
	}
	s.hub.Publish(ChangeEvent{Type: "system", Payload: gin.H{"id": id, "deleted": true}})
	c.Status(http.StatusNoContent)
}
