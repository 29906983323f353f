package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pendergraft/kontocheck/internal/accounts/domain"
	"github.com/pendergraft/kontocheck/internal/methods"
)

// isolate gives the test its own HOME, working directory and flag state.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("KONTOCHECK_SERVER", "")
	t.Setenv("KONTOCHECK_API_KEY", "")
	t.Setenv("NO_COLOR", "1")
	t.Chdir(t.TempDir())

	origCfg, origServer, origKey := cfgFile, server, apiKey
	cfgFile, server, apiKey = "", "", ""
	t.Cleanup(func() { cfgFile, server, apiKey = origCfg, origServer, origKey })
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestGetServer(t *testing.T) {
	home := isolate(t)

	s, remote := getServer()
	assert.Equal(t, DefaultServer, s)
	assert.False(t, remote)

	writeFile(t, filepath.Join(home, ".kontocheck", "config.yaml"), "server: http://global:8080\n")
	s, remote = getServer()
	assert.Equal(t, "http://global:8080", s)
	assert.True(t, remote)

	writeFile(t, projectConfigFile, `server = "http://project:8080"`)
	s, _ = getServer()
	assert.Equal(t, "http://project:8080", s)

	t.Setenv("KONTOCHECK_SERVER", "http://env:8080")
	s, _ = getServer()
	assert.Equal(t, "http://env:8080", s)

	server = "http://flag:8080"
	s, _ = getServer()
	assert.Equal(t, "http://flag:8080", s)
}

func TestGetAPIKey(t *testing.T) {
	isolate(t)

	assert.Empty(t, getAPIKey())

	require.NoError(t, saveCredential(DefaultServer, "stored-key", ""))
	assert.Equal(t, "stored-key", getAPIKey())

	t.Setenv("KONTOCHECK_API_KEY", "env-key")
	assert.Equal(t, "env-key", getAPIKey())

	apiKey = "flag-key"
	assert.Equal(t, "flag-key", getAPIKey())
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"kc_key_0123456789abcdef", "kc_key_012...cdef"},
		{"short", "****"},
		{"123456789012", "****"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.key))
		})
	}
}

func TestProjectConfig(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	err := runConfigInit(&out, projectConfigFile, ProjectConfig{
		Method:      "63",
		Definitions: "defs/methods.toml",
		Output:      "json",
	}, false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "checked locally")

	pc, path, err := loadProjectConfig()
	require.NoError(t, err)
	assert.Equal(t, projectConfigFile, path)
	assert.Equal(t, "63", pc.Method)
	assert.Equal(t, "json", pc.Output)
	assert.Equal(t, filepath.Join("defs", "methods.toml"), pc.Definitions)

	err = runConfigInit(&out, projectConfigFile, ProjectConfig{}, false)
	assert.ErrorContains(t, err, "already exists")
	assert.NoError(t, runConfigInit(&out, projectConfigFile, ProjectConfig{Output: "yaml"}, true))

	assert.Error(t, runConfigInit(&out, "other.toml", ProjectConfig{Method: "123"}, false))
	assert.Error(t, runConfigInit(&out, "other.toml", ProjectConfig{Output: "xml"}, false))

	writeFile(t, "bad.toml", `sever = "typo"`)
	cfgFile = "bad.toml"
	_, _, err = loadProjectConfig()
	assert.ErrorContains(t, err, "unknown key")
}

func TestConfigShow(t *testing.T) {
	isolate(t)
	require.NoError(t, saveCredential("http://a:8080", "kc_key_0123456789abcdef", ""))
	t.Setenv("KONTOCHECK_API_KEY", "kc_key_fedcba9876543210")

	var out bytes.Buffer
	require.NoError(t, runConfigShow(&out))
	assert.Contains(t, out.String(), "KONTOCHECK_SERVER=(not set)")
	assert.Contains(t, out.String(), "KONTOCHECK_API_KEY=kc_key_fed...3210")
	assert.Contains(t, out.String(), "http://a:8080: kc_key_012...cdef")
	assert.Contains(t, out.String(), "(none, checking locally)")
	assert.NotContains(t, out.String(), "0123456789abcdef")
}

func TestRunCheck_Local(t *testing.T) {
	isolate(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     checkRequest
		want    string
		wantErr error
	}{
		{"valid", checkRequest{"00", "9290701", ""}, "00 0009290701: valid\n", nil},
		{"invalid", checkRequest{"00", "9290702", ""}, "00 0009290702: invalid\n", ErrNotValid},
		{"chain", checkRequest{"52", "43001500", "13051172"}, "52 0043001500 (BLZ 13051172): valid, alternative 1\n", nil},
		{"unchecked", checkRequest{"09", "1234567890", ""}, "09 1234567890: unchecked, exception\n", nil},
		{"unknown method", checkRequest{"ZZ", "1", ""}, "", domain.ErrUnknownMethod},
		{"missing bank", checkRequest{"52", "43001500", ""}, "", domain.ErrInvalidBank},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runCheck(ctx, &out, formatText, tt.req.toClient())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, out.String())
		})
	}
}

type checkRequest struct{ method, account, bank string }

func TestRunCheck_Formats(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	require.NoError(t, runCheck(context.Background(), &out, formatJSON, checkRequest{"C0", "43001500", "13051172"}.toClient()))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "valid", decoded["outcome"])
	assert.Equal(t, float64(0), decoded["alternative"])

	out.Reset()
	err := runCheck(context.Background(), &out, formatYAML, checkRequest{"00", "9290702", ""}.toClient())
	assert.ErrorIs(t, err, ErrNotValid)
	var y map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &y))
	assert.Equal(t, false, y["valid"])
	assert.NotContains(t, y, "alternative")
}

func TestRunCheck_Definitions(t *testing.T) {
	isolate(t)
	writeFile(t, filepath.Join("defs", "methods.toml"), `
schema_version = "1.0.0"

[[methods]]
code = "X1"
  [methods.rule]
  weights = [2, 3, 4, 5, 6, 7]
  start = 3
  modulus = 11
  remainders = "mod11"
`)
	writeFile(t, projectConfigFile, "method = \"X1\"\ndefinitions = \"defs/methods.toml\"\n")

	method, account, err := checkArgs([]string{"1234560"})
	require.NoError(t, err)
	assert.Equal(t, "X1", method)

	var out bytes.Buffer
	require.NoError(t, runCheck(context.Background(), &out, formatText, checkRequest{method, account, ""}.toClient()))
	assert.Equal(t, "X1 0001234560: valid\n", out.String())

	// The shared registry is untouched.
	_, ok := methods.Builtin().Get("X1")
	assert.False(t, ok)
}

func TestCheckArgs(t *testing.T) {
	isolate(t)

	_, _, err := checkArgs([]string{"9290701"})
	assert.ErrorContains(t, err, "no method given")

	_, _, err = checkArgs([]string{"123", "9290701"})
	assert.ErrorContains(t, err, "invalid method")

	m, a, err := checkArgs([]string{"b8", "9290701"})
	require.NoError(t, err)
	assert.Equal(t, "b8", m)
	assert.Equal(t, "9290701", a)
}

func TestRunCheck_Remote(t *testing.T) {
	isolate(t)
	var gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"method":"52","account":"0043001500","bank":"13051172","valid":true,"outcome":"valid","alternative":1,"exception":false}`))
	}))
	defer ts.Close()

	server = ts.URL
	apiKey = "kc_key_remote"

	var out bytes.Buffer
	require.NoError(t, runCheck(context.Background(), &out, formatText, checkRequest{"52", "43001500", "13051172"}.toClient()))
	assert.Equal(t, "52 0043001500 (BLZ 13051172): valid, alternative 1\n", out.String())
	assert.Equal(t, "kc_key_remote", gotKey)
}

func TestRootCmd(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"check", "00", "9290701"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "00 0009290701: valid\n", out.String())

	out.Reset()
	cmd = NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"check", "00", "9290702", "-o", "json"})
	assert.ErrorIs(t, cmd.Execute(), ErrNotValid)
	assert.Contains(t, out.String(), `"outcome": "invalid"`)

	cmd = NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"check", "00", "1", "-o", "xml"})
	assert.ErrorContains(t, cmd.Execute(), "unknown output format")
}

func TestRunMethods(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	require.NoError(t, runMethods(context.Background(), &out, formatText, ""))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, methods.Builtin().Len()+1, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "CODE"))

	out.Reset()
	require.NoError(t, runMethods(context.Background(), &out, formatJSON, "B8"))
	var m methodInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &m))
	assert.Equal(t, "chain", m.Kind)

	assert.ErrorIs(t, runMethods(context.Background(), &out, formatText, "ZZ"), methods.ErrUnknownMethod)
}

func TestRunMethods_Remote(t *testing.T) {
	isolate(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"code":"00","description":"remote","kind":"rule"}]}`))
	}))
	defer ts.Close()
	t.Setenv("KONTOCHECK_SERVER", ts.URL)

	var out bytes.Buffer
	require.NoError(t, runMethods(context.Background(), &out, formatText, ""))
	assert.Contains(t, out.String(), "remote")
}

func TestRunChecks(t *testing.T) {
	isolate(t)

	err := runChecks(context.Background(), &bytes.Buffer{}, formatText, clientChecks("", 10))
	assert.ErrorContains(t, err, "--server")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "52", r.URL.Query().Get("method"))
		w.Write([]byte(`{"data":[{"id":"c1","method":"52","account":"******1500","valid":true,"outcome":"valid","alternative":1,"createdAt":"2026-01-01T00:00:00Z"},{"id":"c2","method":"52","account":"******0012","valid":false,"outcome":"unresolvable","createdAt":"2026-01-01T00:00:00Z"}],"pagination":{"limit":2,"hasMore":true,"nextCursor":"abc"}}`))
	}))
	defer ts.Close()
	server = ts.URL

	var out bytes.Buffer
	require.NoError(t, runChecks(context.Background(), &out, formatText, clientChecks("52", 2)))
	assert.Contains(t, out.String(), "******1500")
	assert.Contains(t, out.String(), "unresolvable")
	assert.Contains(t, out.String(), "--cursor abc")
}
