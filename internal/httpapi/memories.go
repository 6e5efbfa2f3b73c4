package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voidcat-ai/reasoning-core/internal/taskmem"
	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

func (s *Server) createMemory(c *gin.Context) {
	var req memoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, voiderr.New(voiderr.InvalidArgument, err.Error()))
		return
	}
	if req.Title == "" || req.Category == "" {
		writeError(c, voiderr.New(voiderr.InvalidArgument, "title and category are required"))
		return
	}

	mem, err := s.store.CreateMemory(taskmem.Memory{
		Category:   req.Category,
		Title:      req.Title,
		Content:    req.Content,
		Importance: req.Importance,
		Tags:       req.Tags,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	s.hub.Publish(ChangeEvent{Type: "memory", Payload: mem})
	c.JSON(http.StatusCreated, mem)
}

func (s *Server) searchMemories(c *gin.Context) {
	var req memorySearchRequest
	// Accept either a JSON body or query params so a plain GET works too.
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, voiderr.New(voiderr.InvalidArgument, err.Error()))
			return
		}
	} else {
		req.Query = c.Query("query")
		req.Category = c.Query("category")
	}
	c.JSON(http.StatusOK, s.store.SearchMemories(req.Query, req.Category))
}

func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.ListCategories())
}

func (s *Server) registerCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		writeError(c, voiderr.New(voiderr.InvalidArgument, "name is required"))
		return
	}
	if err := s.store.RegisterCategory(req.Name); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
