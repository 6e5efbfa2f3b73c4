package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voidcat-ai/reasoning-core/internal/taskmem"
	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

// errorEnvelope is the {error: {code, message}} shape every non-2xx
// response uses.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps a voiderr.Kind onto the HTTP status the gateway replies
// with for that failure.
func statusFor(kind voiderr.Kind) int {
	switch kind {
	case voiderr.InvalidArgument:
		return http.StatusBadRequest
	case voiderr.NotFound:
		return http.StatusNotFound
	case voiderr.Conflict:
		return http.StatusConflict
	case voiderr.KnowledgeEmpty, voiderr.LLMUnavailable:
		return http.StatusServiceUnavailable
	case voiderr.Timeout:
		return http.StatusGatewayTimeout
	case voiderr.Cancelled:
		return 499 // client closed request, nginx's convention
	default:
		return http.StatusInternalServerError
	}
}

func errorCodeFor(kind voiderr.Kind) string {
	switch kind {
	case voiderr.InvalidArgument:
		return "INVALID_ARGUMENT"
	case voiderr.NotFound:
		return "NOT_FOUND"
	case voiderr.Conflict:
		return "TASK_CONFLICT"
	case voiderr.KnowledgeEmpty:
		return "KNOWLEDGE_EMPTY"
	case voiderr.LLMUnavailable:
		return "LLM_UNAVAILABLE"
	case voiderr.Timeout:
		return "TIMEOUT"
	default:
		return "INTERNAL"
	}
}

func writeError(c *gin.Context, err error) {
	kind := voiderr.KindOf(err)
	c.JSON(statusFor(kind), errorEnvelope{Error: errorBody{Code: errorCodeFor(kind), Message: err.Error()}})
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status string `json:"status"`
}

// queryRequest is the body of POST /query.
type queryRequest struct {
	Query        string `json:"query"`
	Model        string `json:"model,omitempty"`
	Enhanced     *bool  `json:"enhanced,omitempty"`
	IncludeTrace bool   `json:"include_trace,omitempty"`
	TimeoutMS    int    `json:"timeout_ms,omitempty"`
}

// queryResponse is the body of a successful POST /query.
type queryResponse struct {
	Response    string      `json:"response"`
	Trace       interface{} `json:"trace,omitempty"`
	Diagnostics interface{} `json:"diagnostics"`
}

// taskRequest is the body of POST/PUT /vscode/api/v1/tasks[/{id}].
type taskRequest struct {
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Status         taskmem.Status `json:"status,omitempty"`
	Priority       int            `json:"priority,omitempty"`
	Complexity     int            `json:"complexity,omitempty"`
	EstimatedHours float64        `json:"estimatedHours,omitempty"`
	ActualHours    float64        `json:"actualHours,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	ParentID       string         `json:"parentId,omitempty"`
	ProjectID      string         `json:"projectId,omitempty"`
	Force          bool           `json:"force,omitempty"`
}

// memoryRequest is the body of POST /vscode/api/v1/memories.
type memoryRequest struct {
	Category   string   `json:"category"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Importance int      `json:"importance,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// memorySearchRequest is the body of POST /vscode/api/v1/memories/search.
type memorySearchRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
}

// projectRequest is the body of POST /vscode/api/v1/projects.
type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// systemStatusResponse is the body of GET /vscode/api/v1/system/status.
type systemStatusResponse struct {
	Diagnostics interface{}   `json:"diagnostics"`
	TaskStats   taskmem.Stats `json:"taskStats"`
}
