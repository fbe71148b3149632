package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aanand-mishra/local-crud/internal/crud"
	"github.com/aanand-mishra/local-crud/internal/metrics"
	"github.com/aanand-mishra/local-crud/internal/storage/memory"
	"github.com/aanand-mishra/local-crud/internal/todo"
	"github.com/aanand-mishra/local-crud/internal/types"
	"github.com/aanand-mishra/local-crud/internal/utils/response"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv     *httptest.Server
	backend *memory.Memory
	metrics *metrics.Metrics
}

func setup(t *testing.T) *fixture {
	t.Helper()
	return setupWith(t, todo.WithAnimationDelay(0))
}

// setupWith builds the server with extra options for the todo controller.
func setupWith(t *testing.T, todoOpts ...todo.Option) *fixture {
	t.Helper()
	backend := memory.New()
	clock := func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	users := crud.New(backend, crud.WithClock(clock))
	require.NoError(t, users.Initialize())
	todos := todo.New(backend, append([]todo.Option{todo.WithClock(clock)}, todoOpts...)...)
	require.NoError(t, todos.Initialize())

	m := metrics.New()
	srv := httptest.NewServer(NewRouter(users, todos, m))
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, backend: backend, metrics: m}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (f *fixture) fillDraft(t *testing.T, name, email, age string) {
	t.Helper()
	for field, value := range map[string]string{
		types.FieldName:  name,
		types.FieldEmail: email,
		types.FieldAge:   age,
	} {
		body, _ := json.Marshal(map[string]string{"field": field, "value": value})
		resp, _ := f.do(t, http.MethodPatch, "/api/users/draft", string(body))
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func decodeState(t *testing.T, data []byte) crud.State {
	t.Helper()
	var s crud.State
	require.NoError(t, json.Unmarshal(data, &s))
	return s
}

func TestUserLifecycle(t *testing.T) {
	f := setup(t)

	resp, data := f.do(t, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeState(t, data).Users)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	f.fillDraft(t, "Amy", "a@b.com", "30")
	resp, data = f.do(t, http.MethodPost, "/api/users/submit", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s := decodeState(t, data)
	require.Len(t, s.Users, 1)
	assert.Equal(t, types.User{ID: "1700000000000", Name: "Amy", Email: "a@b.com", Age: 30}, s.Users[0])

	raw, _, _ := f.backend.GetItem(types.UsersKey)
	assert.JSONEq(t, `[{"id":"1700000000000","name":"Amy","email":"a@b.com","age":30}]`, raw)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Records[types.UsersKey]))

	// Edit.
	resp, data = f.do(t, http.MethodPost, "/api/users/1700000000000/edit", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s = decodeState(t, data)
	assert.True(t, s.EditMode)
	assert.Equal(t, "30", s.Draft.Age)

	body, _ := json.Marshal(map[string]string{"field": "age", "value": "31"})
	f.do(t, http.MethodPatch, "/api/users/draft", string(body))
	resp, data = f.do(t, http.MethodPost, "/api/users/submit", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s = decodeState(t, data)
	assert.False(t, s.EditMode)
	assert.Equal(t, 31, s.Users[0].Age)

	// Delete.
	resp, _ = f.do(t, http.MethodDelete, "/api/users/1700000000000", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, http.MethodDelete, "/api/users/1700000000000", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.Records[types.UsersKey]))
}

func TestSubmitValidationError(t *testing.T) {
	f := setup(t)
	f.fillDraft(t, "Amy", "a@b.com", "30")
	f.do(t, http.MethodPost, "/api/users/submit", "")

	f.fillDraft(t, "Bo", "a@b.com", "30")
	resp, data := f.do(t, http.MethodPost, "/api/users/submit", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out response.Response
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, response.StatusError, out.Status)
	assert.Equal(t, types.FieldErrors{"email": "Email already exists"}, out.Fields)
}

func TestUpdateDraftUnknownField(t *testing.T) {
	f := setup(t)
	resp, _ := f.do(t, http.MethodPatch, "/api/users/draft", `{"field":"id","value":"1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPatch, "/api/users/draft", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClearAllNeedsConfirmation(t *testing.T) {
	f := setup(t)
	f.fillDraft(t, "Amy", "a@b.com", "30")
	f.do(t, http.MethodPost, "/api/users/submit", "")

	resp, _ := f.do(t, http.MethodDelete, "/api/users", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, data := f.do(t, http.MethodDelete, "/api/users?confirm=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeState(t, data).Users)
}

func TestCancelAndEditUnknown(t *testing.T) {
	f := setup(t)
	resp, _ := f.do(t, http.MethodPost, "/api/users/404/edit", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, data := f.do(t, http.MethodPost, "/api/users/cancel", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decodeState(t, data).EditMode)
}

func TestTodoRoutes(t *testing.T) {
	f := setup(t)

	resp, data := f.do(t, http.MethodPost, "/api/todos", `{"text":"buy milk"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created types.Todo
	require.NoError(t, json.Unmarshal(data, &created))
	assert.Equal(t, "buy milk", created.Text)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Records[types.TodosKey]))

	resp, _ = f.do(t, http.MethodPost, "/api/todos", `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPatch, "/api/todos/1700000000000/toggle", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data = f.do(t, http.MethodGet, "/api/todos", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"pending":[],"completed":[{"id":1700000000000,"text":"buy milk","completed":true}]}`, string(data))

	resp, _ = f.do(t, http.MethodPut, "/api/todos/1700000000000", `{"text":"buy oat milk"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPut, "/api/todos/abc", `{"text":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodDelete, "/api/todos/1700000000000", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.Records[types.TodosKey]))
	resp, _ = f.do(t, http.MethodDelete, "/api/todos/1700000000000", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTodoFadeInVisibleUntilTimerFires(t *testing.T) {
	var (
		mu      sync.Mutex
		pending []func()
	)
	f := setupWith(t,
		todo.WithAnimationDelay(time.Hour),
		todo.WithAfterFunc(func(d time.Duration, fn func()) {
			mu.Lock()
			defer mu.Unlock()
			pending = append(pending, fn)
		}),
	)

	resp, data := f.do(t, http.MethodPost, "/api/todos", `{"text":"x"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"id":1700000000000,"text":"x","completed":false,"animate":"fade-in"}`, string(data))

	_, data = f.do(t, http.MethodGet, "/api/todos", "")
	assert.JSONEq(t, `{"pending":[{"id":1700000000000,"text":"x","completed":false,"animate":"fade-in"}],"completed":[]}`, string(data))

	raw, _, _ := f.backend.GetItem(types.TodosKey)
	assert.NotContains(t, raw, "animate", "the hint is never stored")

	mu.Lock()
	require.Len(t, pending, 1)
	fire := pending[0]
	mu.Unlock()
	fire()

	_, data = f.do(t, http.MethodGet, "/api/todos", "")
	assert.JSONEq(t, `{"pending":[{"id":1700000000000,"text":"x","completed":false}],"completed":[]}`, string(data))
}

func TestThemeRoutes(t *testing.T) {
	f := setup(t)

	_, data := f.do(t, http.MethodGet, "/api/theme", "")
	assert.JSONEq(t, `{"theme":"light"}`, string(data))

	_, data = f.do(t, http.MethodPost, "/api/theme/toggle", "")
	assert.JSONEq(t, `{"theme":"dark"}`, string(data))
	raw, _, _ := f.backend.GetItem(types.ThemeKey)
	assert.Equal(t, "dark", raw)

	resp, _ := f.do(t, http.MethodPut, "/api/theme", `{"theme":"blue"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = f.do(t, http.MethodPut, "/api/theme", `{"theme":"light"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"theme":"light"}`, string(data))
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := setup(t)
	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/api/theme", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	f := setup(t)
	f.do(t, http.MethodGet, "/api/users", "")

	resp, data := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `local_crud_http_requests_total{code="200",route="GET /api/users"} 1`)
}
