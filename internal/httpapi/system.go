package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voidcat-ai/reasoning-core/internal/taskmem"
	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) diagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, s.coordinator.Diagnostics())
}

func (s *Server) systemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, systemStatusResponse{
		Diagnostics: s.coordinator.Diagnostics(),
		TaskStats:   s.store.Stats(),
	})
}

// recommendation is one actionable suggestion surfaced to an editor client.
type recommendation struct {
	Kind    string `json:"kind"`
	TaskID  string `json:"taskId,omitempty"`
	Message string `json:"message"`
}

// systemRecommendations flags blocked tasks and overloaded high-priority
// work: simple rule-based suggestions over the current task set, not an
// LLM call, so it stays cheap enough to poll from an editor sidebar.
func (s *Server) systemRecommendations(c *gin.Context) {
	var out []recommendation
	for _, t := range s.store.ListTasks(taskmem.TaskFilter{Status: taskmem.StatusBlocked}) {
		out = append(out, recommendation{Kind: "unblock", TaskID: t.ID, Message: "blocked task needs attention: " + t.Name})
	}
	for _, t := range s.store.ListTasks(taskmem.TaskFilter{Status: taskmem.StatusPending, MinPriority: 8}) {
		out = append(out, recommendation{Kind: "prioritize", TaskID: t.ID, Message: "high-priority task still pending: " + t.Name})
	}
	if s.coordinator.Diagnostics().KnowledgeEmpty {
		out = append(out, recommendation{Kind: "knowledge", Message: "knowledge corpus is empty; enhanced queries will fall back to basic answers"})
	}
	if out == nil {
		out = []recommendation{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) query(c *gin.Context) {
	select {
	case s.querySem <- struct{}{}:
		defer func() { <-s.querySem }()
	default:
		c.JSON(http.StatusServiceUnavailable, errorEnvelope{Error: errorBody{
			Code:    "BUSY",
			Message: "server busy, too many concurrent queries",
		}})
		c.Abort()
		return
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, voiderr.New(voiderr.InvalidArgument, err.Error()))
		return
	}
	if req.Query == "" {
		writeError(c, voiderr.New(voiderr.InvalidArgument, "query is required"))
		return
	}

	opts := defaultQueryOptions()
	if req.Enhanced != nil {
		opts.Enhanced = *req.Enhanced
	}
	opts.IncludeTrace = req.IncludeTrace
	if req.TimeoutMS > 0 {
		opts.TimeoutMS = req.TimeoutMS
	}
	if req.Model != "" {
		opts.Model = req.Model
	}

	result, err := s.coordinator.Query(c.Request.Context(), req.Query, opts)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := queryResponse{Response: result.Answer, Diagnostics: result.Diagnostics}
	if req.IncludeTrace {
		resp.Trace = result.Trace
	}
	c.JSON(http.StatusOK, resp)
}
