package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "insignia", cmd.Use)
	assert.Contains(t, cmd.Long, "signing service")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"user", "create"}, {"user", "get"}, {"user", "lookup"}, {"user", "docs"},
		{"session", "create"}, {"session", "auth"}, {"session", "logout"}, {"session", "get"},
		{"doc", "register"}, {"doc", "complete"}, {"doc", "get"}, {"doc", "grant"},
		{"doc", "request-signature"}, {"doc", "sign"},
		{"graph"}, {"serve"},
	}

	for _, path := range commands {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"log-format", "config", "db"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "session", "create"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

// runCLI executes the root command against db and returns stdout.
func runCLI(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// runJSON executes a command with --format json and decodes the data field.
func runJSON(t *testing.T, db string, data interface{}, args ...string) {
	t.Helper()
	out, err := runCLI(t, db, append([]string{"--format", "json"}, args...)...)
	require.NoError(t, err, out)

	resp := struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, data))
}

func TestCLI_SigningFlow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "insignia.db")

	var userID string
	runJSON(t, db, &userID, "user", "create", "--pno", "191212121212", "--name", "Tolvan", "--email", "tolvan@example.se")
	assert.True(t, strings.HasPrefix(userID, "User-"))

	var users []map[string]interface{}
	runJSON(t, db, &users, "user", "lookup", "191212121212")
	require.Len(t, users, 1)
	assert.Equal(t, userID, users[0]["user_id"])

	var sess map[string]interface{}
	runJSON(t, db, &sess, "session", "create")
	sessionID := sess["session_id"].(string)

	var authed map[string]interface{}
	runJSON(t, db, &authed, "session", "auth", sessionID, userID, "--auth-data", "proof")
	assert.NotEmpty(t, authed["login_session_id"])

	var docID string
	runJSON(t, db, &docID, "doc", "register", userID)
	_, err := runCLI(t, db, "doc", "complete", docID, "--bucket", "uploads", "--key", "a.pdf", "--checksum", "ab12")
	require.NoError(t, err)
	_, err = runCLI(t, db, "doc", "request-signature", docID, userID)
	require.NoError(t, err)
	_, err = runCLI(t, db, "doc", "sign", docID, userID, "--signature", "sig")
	require.NoError(t, err)

	var doc map[string]interface{}
	runJSON(t, db, &doc, "doc", "get", docID)
	assert.Equal(t, "ab12", doc["checksum"])
	assert.Equal(t, []interface{}{userID}, doc["signatures"])

	out, err := runCLI(t, db, "graph", docID, "--links")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph {")
	assert.Contains(t, out, `<a href="?vertex-id=`+docID+`">`)

	_, err = runCLI(t, db, "session", "logout", sessionID)
	require.NoError(t, err)
	out, err = runCLI(t, db, "session", "get", sessionID)
	require.NoError(t, err)
	assert.Contains(t, out, "login_session_id: None")
}

func TestCLI_UnknownUser(t *testing.T) {
	db := filepath.Join(t.TempDir(), "insignia.db")

	out, err := runCLI(t, db, "user", "get", "User-missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "INVALID_USER_ID")
}

func TestCLI_MalformedID(t *testing.T) {
	db := filepath.Join(t.TempDir(), "insignia.db")

	_, err := runCLI(t, db, "session", "get", "nonsense")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCLI_MissingRequiredFlag(t *testing.T) {
	db := filepath.Join(t.TempDir(), "insignia.db")

	_, err := runCLI(t, db, "user", "create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestCLI_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "insignia.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("backend: badger\nbadger: {in_memory: true}\n"), 0o600))

	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "session", "create"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Session{session_id:")
}

func TestCLI_BadConfigFile(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "session", "create"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
