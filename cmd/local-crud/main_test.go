package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/aanand-mishra/local-crud/internal/crud"
	"github.com/aanand-mishra/local-crud/internal/todo"
	"github.com/aanand-mishra/local-crud/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a config file pointing at a fresh database and
// returns its path.
func writeConfig(t *testing.T, remoteURL string) string {
	t.Helper()
	dir := t.TempDir()
	if remoteURL == "" {
		remoteURL = "http://127.0.0.1:1"
	}
	yaml := "env: prod\n" +
		"storage_path: " + filepath.Join(dir, "test.db") + "\n" +
		"remote:\n  base_url: " + remoteURL + "\n  timeout: 2s\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestUsersAddListDelete(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "users", "list")
	require.NoError(t, err)
	assert.Equal(t, "no user added yet\n", out)

	out, err = run(t, cfg, "--json", "users", "add", "--name", "Amy", "--email", "a@b.com", "--age", "30")
	require.NoError(t, err)
	var added types.User
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, "Amy", added.Name)
	assert.Equal(t, 30, added.Age)
	assert.NotEmpty(t, added.ID)

	out, err = run(t, cfg, "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "a@b.com")

	out, err = run(t, cfg, "users", "edit", added.ID, "--age", "31")
	require.NoError(t, err)
	assert.Equal(t, "Updated user: "+added.ID+"\n", out)

	out, err = run(t, cfg, "--json", "users", "list")
	require.NoError(t, err)
	var users []types.User
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	require.Len(t, users, 1)
	assert.Equal(t, 31, users[0].Age)
	assert.Equal(t, "Amy", users[0].Name)

	_, err = run(t, cfg, "users", "delete", added.ID)
	require.NoError(t, err)

	_, err = run(t, cfg, "users", "delete", added.ID)
	assert.ErrorIs(t, err, crud.ErrNotFound)
}

func TestUsersAddValidationErrors(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "users", "add", "--name", "Amy1", "--email", "nope", "--age", "200")
	assert.ErrorIs(t, err, errValidation)
	assert.Equal(t,
		"age: Age must be between 1 and 120\n"+
			"email: Email is invalid\n"+
			"name: Name should only contain alphabets\n",
		out)
}

func TestUsersAddDuplicateEmail(t *testing.T) {
	cfg := writeConfig(t, "")

	_, err := run(t, cfg, "users", "add", "--name", "Amy", "--email", "a@b.com", "--age", "30")
	require.NoError(t, err)

	out, err := run(t, cfg, "users", "add", "--name", "Bob", "--email", "a@b.com", "--age", "40")
	assert.ErrorIs(t, err, errValidation)
	assert.Equal(t, "email: Email already exists\n", out)
}

func TestUsersClearNeedsConfirmation(t *testing.T) {
	cfg := writeConfig(t, "")

	_, err := run(t, cfg, "users", "add", "--name", "Amy", "--email", "a@b.com", "--age", "30")
	require.NoError(t, err)

	_, err = run(t, cfg, "users", "clear")
	assert.ErrorIs(t, err, crud.ErrConfirmationRequired)

	out, err := run(t, cfg, "users", "clear", "--yes")
	require.NoError(t, err)
	assert.Equal(t, "Cleared all users\n", out)

	out, err = run(t, cfg, "users", "list")
	require.NoError(t, err)
	assert.Equal(t, "no user added yet\n", out)
}

func TestTodosLifecycle(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "todos", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "You're all caught up!")
	assert.Contains(t, out, "No completed tasks yet")

	_, err = run(t, cfg, "todos", "add", "   ")
	assert.ErrorIs(t, err, todo.ErrEmptyText)

	out, err = run(t, cfg, "--json", "todos", "add", "buy", "milk")
	require.NoError(t, err)
	var added types.Todo
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, "buy milk", added.Text)
	id := strconv.FormatInt(added.ID, 10)
	assert.Equal(t, id, mustJSONField(t, out, "id"))

	_, err = run(t, cfg, "todos", "done", id)
	require.NoError(t, err)

	out, err = run(t, cfg, "todos", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "[x] "+id+"  buy milk")

	_, err = run(t, cfg, "todos", "edit", id, "buy", "oat", "milk")
	require.NoError(t, err)

	out, err = run(t, cfg, "todos", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "buy oat milk")

	_, err = run(t, cfg, "todos", "delete", id)
	require.NoError(t, err)

	_, err = run(t, cfg, "todos", "delete", id)
	assert.ErrorIs(t, err, todo.ErrNotFound)

	_, err = run(t, cfg, "todos", "done", "abc")
	assert.Error(t, err)
}

func mustJSONField(t *testing.T, doc, field string) string {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(doc), &m))
	raw, ok := m[field]
	require.True(t, ok, "field %s missing", field)
	return string(raw)
}

func TestThemeCommands(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)

	out, err = run(t, cfg, "theme", "toggle")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	out, err = run(t, cfg, "theme", "show")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	_, err = run(t, cfg, "theme", "set", "blue")
	assert.ErrorIs(t, err, todo.ErrInvalidTheme)

	out, err = run(t, cfg, "theme", "set", "light")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)
}

func TestRemoteCommands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":11,"name":"Amy","email":"a@b.com"}`))
		case http.MethodPut:
			w.Write([]byte(`{"id":1,"name":"Amy","email":"a@b.com"}`))
		case http.MethodDelete:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()
	cfg := writeConfig(t, srv.URL)

	out, err := run(t, cfg, "remote", "create", "--name", "Amy", "--email", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "user submitted sucessfully\n", out)

	out, err = run(t, cfg, "remote", "create", "--name", "Amy")
	assert.Error(t, err)
	assert.Equal(t, "Both field are required\n", out)

	out, err = run(t, cfg, "remote", "update", "1", "--name", "Amy", "--email", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "User updated successfully!\n", out)

	out, err = run(t, cfg, "remote", "delete", "1")
	assert.Error(t, err)
	assert.Equal(t, "Error deleting user\n", out)
}

func TestMissingConfig(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"users", "list"})
	assert.Error(t, cmd.Execute())
}
