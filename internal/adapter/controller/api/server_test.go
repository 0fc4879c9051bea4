package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/YoshitsuguKoike/tasktrack/internal/app"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/dto"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/service"
	usecase "github.com/YoshitsuguKoike/tasktrack/internal/application/usecase/task"
	"github.com/YoshitsuguKoike/tasktrack/internal/infrastructure/memory"
	"github.com/YoshitsuguKoike/tasktrack/internal/infrastructure/metrics"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	manager := usecase.NewManager(memory.NewEntityStore(), memory.NewPriorityIndex(), memory.NewHistoryTracker(memory.DefaultHistoryCapacity))
	manager.SetLogger(app.NopLogger)
	if opts.Logger == nil {
		opts.Logger = app.NopLogger
	}
	return NewServer(service.NewTaskService(manager, nil, nil), opts)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestTasksEndpoints(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(t, s, http.MethodPost, "/tasks",
		`{"title":"Write report","description":"Q3","startTime":"2025-01-15T09:00:00","duration":30}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[dto.TaskDTO](t, rec)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "TASK", created.Type)
	assert.Equal(t, "NEW", created.Status)
	require.NotNil(t, created.EndTime)
	assert.Equal(t, "2025-01-15T09:30:00", *created.EndTime)

	t.Run("overlap is rejected with 406", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/tasks",
			`{"title":"Clash","startTime":"2025-01-15T09:15:00","duration":30}`)
		assert.Equal(t, http.StatusNotAcceptable, rec.Code)
		assert.JSONEq(t, `{"error":"Tasks overlap"}`, rec.Body.String())
	})

	t.Run("explicit ID in use is a conflict", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/tasks", `{"id":1,"title":"Dup"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("get by id", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/tasks/1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Write report", decode[dto.TaskDTO](t, rec).Title)

		assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/tasks/99", "").Code)
		assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/tasks/abc", "").Code)
		assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/tasks/-3", "").Code)
	})

	t.Run("update", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/tasks/1", `{"title":"Write final report","status":"DONE"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "DONE", decode[dto.TaskDTO](t, rec).Status)

		rec = do(t, s, http.MethodPost, "/tasks/42", `{"title":"ghost"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/tasks", "")
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[[]dto.TaskDTO](t, rec)
		require.Len(t, list, 1)
		assert.Equal(t, "Write final report", list[0].Title)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(t, s, http.MethodDelete, "/tasks/1", "").Code)
		assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/tasks/1", "").Code)
		assert.Equal(t, http.StatusOK, do(t, s, http.MethodDelete, "/tasks", "").Code)
	})
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t, Options{})

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"empty body", http.MethodPost, "/tasks", "", http.StatusBadRequest, "Empty request body"},
		{"invalid json", http.MethodPost, "/tasks", "{not json", http.StatusBadRequest, "Invalid JSON format"},
		{"invalid status", http.MethodPost, "/tasks", `{"title":"x","status":"LATER"}`, http.StatusBadRequest, ""},
		{"negative duration", http.MethodPost, "/tasks", `{"title":"x","duration":-5}`, http.StatusBadRequest, ""},
		{"bad start time", http.MethodPost, "/tasks", `{"title":"x","startTime":"tomorrow"}`, http.StatusBadRequest, ""},
		{"subtask without epic id", http.MethodPost, "/subtasks", `{"title":"x"}`, http.StatusBadRequest, "epicId is required"},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound, "Not Found"},
		{"wrong method", http.MethodPut, "/tasks", `{}`, http.StatusMethodNotAllowed, "Method Not Allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantErr != "" {
				body := decode[map[string]string](t, rec)
				assert.Equal(t, tt.wantErr, body["error"])
			}
		})
	}
}

func TestEpicAndSubtaskEndpoints(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(t, s, http.MethodPost, "/epics", `{"title":"Release","description":"v1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	epicID := decode[dto.TaskDTO](t, rec).ID

	rec = do(t, s, http.MethodPost, "/subtasks", `{"title":"Missing epic","epicId":99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/subtasks",
		fmt.Sprintf(`{"title":"Tag build","epicId":%d,"status":"IN_PROGRESS","startTime":"2025-02-01T10:00:00","duration":30}`, epicID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	subID := decode[dto.TaskDTO](t, rec).ID

	rec = do(t, s, http.MethodGet, fmt.Sprintf("/epics/%d", epicID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	e := decode[dto.TaskDTO](t, rec)
	assert.Equal(t, "IN_PROGRESS", e.Status)
	assert.Equal(t, []int{subID}, e.SubtaskIDs)
	require.NotNil(t, e.StartTime)
	require.NotNil(t, e.EndTime)
	assert.Equal(t, "2025-02-01T10:00:00", *e.StartTime)
	assert.Equal(t, "2025-02-01T10:30:00", *e.EndTime)

	t.Run("epic update ignores derived fields", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, fmt.Sprintf("/epics/%d", epicID), `{"title":"Release 1.0","status":"DONE"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = do(t, s, http.MethodGet, fmt.Sprintf("/epics/%d", epicID), "")
		e := decode[dto.TaskDTO](t, rec)
		assert.Equal(t, "Release 1.0", e.Title)
		assert.Equal(t, "IN_PROGRESS", e.Status)
	})

	t.Run("subtasks of epic", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, fmt.Sprintf("/epics/%d/subtasks", epicID), "")
		require.Equal(t, http.StatusOK, rec.Code)
		subs := decode[[]dto.TaskDTO](t, rec)
		require.Len(t, subs, 1)
		assert.Equal(t, "Tag build", subs[0].Title)

		assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/epics/77/subtasks", "").Code)
	})

	t.Run("kinds do not mix", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, fmt.Sprintf("/tasks/%d", epicID), "").Code)
		assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, fmt.Sprintf("/epics/%d", subID), "").Code)
	})

	t.Run("deleting the epic removes its subtasks", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(t, s, http.MethodDelete, fmt.Sprintf("/epics/%d", epicID), "").Code)
		assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, fmt.Sprintf("/subtasks/%d", subID), "").Code)
	})
}

func TestEpicAndSubtaskUpdates(t *testing.T) {
	var logs bytes.Buffer
	manager := usecase.NewManager(memory.NewEntityStore(), memory.NewPriorityIndex(), memory.NewHistoryTracker(memory.DefaultHistoryCapacity))
	manager.SetLogger(app.NewWriterLogger(&logs))
	s := NewServer(service.NewTaskService(manager, nil, nil), Options{Logger: app.NopLogger})

	rec := do(t, s, http.MethodPost, "/epics", `{"title":"Backend"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[dto.TaskDTO](t, rec).ID
	rec = do(t, s, http.MethodPost, "/epics", `{"title":"Frontend"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	second := decode[dto.TaskDTO](t, rec).ID

	rec = do(t, s, http.MethodPost, "/subtasks",
		fmt.Sprintf(`{"title":"Schema","epicId":%d,"startTime":"2025-02-01T10:00:00","duration":30}`, first))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	subID := decode[dto.TaskDTO](t, rec).ID

	t.Run("title-only epic update does not warn", func(t *testing.T) {
		logs.Reset()
		rec := do(t, s, http.MethodPost, fmt.Sprintf("/epics/%d", first), `{"title":"Backend v2"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, logs.String(), "WARN")
	})

	t.Run("epic update naming a status warns", func(t *testing.T) {
		logs.Reset()
		rec := do(t, s, http.MethodPost, fmt.Sprintf("/epics/%d", first), `{"title":"Backend v3","status":"DONE"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, logs.String(), "ignoring requested values")
	})

	t.Run("subtask update answers with the stored owner", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, fmt.Sprintf("/subtasks/%d", subID),
			fmt.Sprintf(`{"title":"Schema v2","epicId":%d,"startTime":"2025-02-01T10:00:00","duration":30}`, second))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decode[dto.TaskDTO](t, rec)
		assert.Equal(t, "Schema v2", got.Title)
		require.NotNil(t, got.EpicID)
		assert.Equal(t, first, *got.EpicID)

		// The answer is not a read, so history stays empty
		rec = do(t, s, http.MethodGet, "/history", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[[]dto.TaskDTO](t, rec))
	})
}

func TestHistoryAndPrioritized(t *testing.T) {
	s := newTestServer(t, Options{})

	do(t, s, http.MethodPost, "/tasks", `{"title":"A","startTime":"2025-01-01T10:00:00","duration":60}`)
	do(t, s, http.MethodPost, "/tasks", `{"title":"B"}`)
	do(t, s, http.MethodPost, "/tasks", `{"title":"C","startTime":"2025-01-01T08:00:00","duration":60}`)

	do(t, s, http.MethodGet, "/tasks/3", "")
	do(t, s, http.MethodGet, "/tasks/1", "")

	rec := do(t, s, http.MethodGet, "/prioritized", "")
	require.Equal(t, http.StatusOK, rec.Code)
	prioritized := decode[[]dto.TaskDTO](t, rec)
	require.Len(t, prioritized, 2)
	assert.Equal(t, "C", prioritized[0].Title)
	assert.Equal(t, "A", prioritized[1].Title)

	rec = do(t, s, http.MethodGet, "/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]dto.TaskDTO](t, rec)
	require.Len(t, history, 2)
	assert.Equal(t, 3, history[0].ID)
	assert.Equal(t, 1, history[1].ID)
}

func TestHealthMetricsAndRequestID(t *testing.T) {
	reg, m := metrics.NewRegistry()
	s := newTestServer(t, Options{Metrics: m, Gatherer: reg})

	rec := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[app.Health](t, rec)
	assert.Equal(t, "ok", health.Status)
	assert.NotEmpty(t, health.Version)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 26)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	do(t, s, http.MethodPost, "/tasks", `{"title":"counted"}`)

	rec = do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `tasktrack_http_requests_total{code="200",method="GET",route="/health"} 2`)
	assert.Contains(t, body, `tasktrack_http_requests_total{code="201",method="POST",route="/tasks"} 1`)
}

func TestServe_GracefulShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := newTestServer(t, Options{ShutdownTimeout: time.Second})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
