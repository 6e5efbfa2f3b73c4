package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voidcat-ai/reasoning-core/internal/knowledge"
	"github.com/voidcat-ai/reasoning-core/internal/rag"
	"github.com/voidcat-ai/reasoning-core/internal/retrieval"
	"github.com/voidcat-ai/reasoning-core/internal/taskmem"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := taskmem.Open(t.TempDir())
	require.NoError(t, err)

	corpus := knowledge.NewCorpus(knowledge.DefaultConfig(), zap.NewNop())
	retriever := retrieval.New(corpus)
	coord := rag.New(nil, retriever, nil, nil, zap.NewNop())

	return New(Config{
		Addr:               "127.0.0.1:0",
		Coordinator:        coord,
		Store:              store,
		Logger:             zap.NewNop(),
		MaxConcurrentQuery: 1,
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestDiagnostics(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/diagnostics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "knowledge_empty")
}

func TestTaskCRUDRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/vscode/api/v1/tasks", taskRequest{Name: "write tests", Priority: 5})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created taskmem.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "write tests", created.Name)

	rec = doJSON(t, s, http.MethodGet, "/vscode/api/v1/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPut, "/vscode/api/v1/tasks/"+created.ID, taskRequest{Status: taskmem.StatusInProgress})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated taskmem.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, taskmem.StatusInProgress, updated.Status)

	rec = doJSON(t, s, http.MethodDelete, "/vscode/api/v1/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/vscode/api/v1/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTaskRequiresName(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/vscode/api/v1/tasks", taskRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "INVALID_ARGUMENT", env.Error.Code)
}

func TestMemoryCreateAndSearch(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/vscode/api/v1/memories", memoryRequest{
		Category: "general", Title: "prefers tabs", Content: "uses tabs not spaces",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/vscode/api/v1/memories/search", memorySearchRequest{Query: "tabs"})
	require.Equal(t, http.StatusOK, rec.Code)
	var found []taskmem.Memory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "prefers tabs", found[0].Title)
}

func TestProjectCRUD(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/vscode/api/v1/projects", projectRequest{Name: "voidcat"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var proj taskmem.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &proj))

	rec = doJSON(t, s, http.MethodGet, "/vscode/api/v1/projects/"+proj.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/vscode/api/v1/projects/"+proj.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestQueryRejectsEmptyQuery(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/query", queryRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryReturns503WhenBusy(t *testing.T) {
	s := newTestServer(t)
	s.querySem <- struct{}{} // saturate the single slot

	rec := doJSON(t, s, http.MethodPost, "/query", queryRequest{Query: "hello"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "BUSY", env.Error.Code)
}

func TestSystemRecommendationsFlagsBlockedTask(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/vscode/api/v1/tasks", taskRequest{Name: "blocked work", Status: taskmem.StatusBlocked})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/vscode/api/v1/system/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recs []recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recs))
	require.NotEmpty(t, recs)
	assert.Equal(t, "unblock", recs[0].Kind)
}
