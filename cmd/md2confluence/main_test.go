package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/toothbrush/md2confluence/confluence"
	"github.com/toothbrush/md2confluence/internal/logging"
	"github.com/toothbrush/md2confluence/publish"
	"gopkg.in/yaml.v2"
)

func TestBindFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("url", "", "")
	cmd.Flags().String("add-label", "", "")
	cmd.Flags().Bool("add-meta", false, "")
	cmd.Flags().Bool("convert-jira", true, "")
	cmd.Flags().StringSlice("auth-token-cmd", []string{}, "")

	// given on the command line, so the file mustn't win
	if err := cmd.Flags().Set("add-label", "from-cli"); err != nil {
		t.Fatal(err)
	}

	var parsed YamlConfig
	in := `
url: https://acme.atlassian.net
add-label: from-file
add-meta: true
convert-jira: false
auth-token-cmd: [pass, show, atlassian]
with-vcr: true
`
	if err := yaml.UnmarshalStrict([]byte(in), &parsed); err != nil {
		t.Fatal(err)
	}
	if err := bindFlags(cmd, parsed); err != nil {
		t.Fatalf("bindFlags: %v", err)
	}

	if got, _ := cmd.Flags().GetString("url"); got != "https://acme.atlassian.net" {
		t.Errorf("url = %q", got)
	}
	if got, _ := cmd.Flags().GetString("add-label"); got != "from-cli" {
		t.Errorf("add-label = %q, command line should win", got)
	}
	if got, _ := cmd.Flags().GetBool("add-meta"); !got {
		t.Errorf("add-meta not set from file")
	}
	if got, _ := cmd.Flags().GetBool("convert-jira"); got {
		t.Errorf("convert-jira should be switched off by the file")
	}
	if got, _ := cmd.Flags().GetStringSlice("auth-token-cmd"); strings.Join(got, " ") != "pass show atlassian" {
		t.Errorf("auth-token-cmd = %v", got)
	}
}

func TestConfigFileIsStrict(t *testing.T) {
	var parsed YamlConfig
	if err := yaml.UnmarshalStrict([]byte("url: https://x\nauth-tokn: oops\n"), &parsed); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func resetConfigGlobals(t *testing.T) {
	t.Helper()
	config, actual, parsed := Config, ConfigActual, ParsedConfig
	t.Cleanup(func() {
		Config, ConfigActual, ParsedConfig = config, actual, parsed
	})
	Config, ConfigActual, ParsedConfig = "", "", YamlConfig{}
}

func TestInitializeConfig(t *testing.T) {
	dir := t.TempDir()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("auth-username", "", "")

	t.Run("explicit file", func(t *testing.T) {
		resetConfigGlobals(t)
		path := filepath.Join(dir, "good.yaml")
		if err := os.WriteFile(path, []byte("auth-username: paul\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		Config = path

		if err := initializeConfig(cmd); err != nil {
			t.Fatalf("initializeConfig: %v", err)
		}
		if ConfigActual != path {
			t.Errorf("ConfigActual = %q", ConfigActual)
		}
		if got, _ := cmd.Flags().GetString("auth-username"); got != "paul" {
			t.Errorf("auth-username = %q", got)
		}
	})

	t.Run("bad file", func(t *testing.T) {
		resetConfigGlobals(t)
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("no-such-setting: 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		Config = path

		if err := initializeConfig(cmd); err == nil {
			t.Fatal("expected error for unknown setting")
		}
	})

	t.Run("missing file from env", func(t *testing.T) {
		resetConfigGlobals(t)
		t.Setenv("MD2CONFLUENCE_CONFIG", filepath.Join(dir, "absent.yaml"))

		if err := initializeConfig(cmd); err == nil {
			t.Fatal("a config file asked for by name has to exist")
		}
	})
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Settings
		wantErr string
	}{
		{"complete", Settings{Host: "https://acme.atlassian.net", Username: "paul", Token: "t"}, ""},
		{"no host", Settings{Username: "paul", Token: "t"}, "Host"},
		{"not a url", Settings{Host: "not a url", Username: "paul", Token: "t"}, "Host"},
		{"no user", Settings{Host: "https://acme.atlassian.net", Token: "t"}, "--auth-username"},
		{"no token", Settings{Host: "https://acme.atlassian.net", Username: "paul"}, "--auth-token-cmd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestHostOf(t *testing.T) {
	got, err := hostOf("https://acme.atlassian.net/wiki/spaces/DOCS/pages/5")
	if err != nil || got != "https://acme.atlassian.net" {
		t.Errorf("hostOf(page url) = %q, %v", got, err)
	}
	if got, err := hostOf(""); err != nil || got != "" {
		t.Errorf("hostOf(\"\") = %q, %v", got, err)
	}
	if _, err := hostOf("acme.atlassian.net"); err == nil {
		t.Error("expected error without scheme")
	}
}

func TestAuthToken(t *testing.T) {
	token, tokenCmd := AuthToken, AuthTokenCmd
	t.Cleanup(func() { AuthToken, AuthTokenCmd = token, tokenCmd })

	AuthToken, AuthTokenCmd = "", []string{"echo", "from-cmd"}
	t.Setenv(tokenEnv, "")
	if got, err := authToken(); err != nil || got != "from-cmd" {
		t.Errorf("command: got %q, %v", got, err)
	}

	t.Setenv(tokenEnv, "from-env")
	if got, _ := authToken(); got != "from-env" {
		t.Errorf("env: got %q", got)
	}

	AuthToken = "from-flag"
	if got, _ := authToken(); got != "from-flag" {
		t.Errorf("flag: got %q", got)
	}

	AuthToken, AuthTokenCmd = "", nil
	t.Setenv(tokenEnv, "")
	if got, err := authToken(); err != nil || got != "" {
		t.Errorf("nothing configured: got %q, %v", got, err)
	}
}

func TestWatchLoop_Debounces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	runs := make(chan struct{}, 10)
	done := make(chan error, 1)

	target := filepath.Join(t.TempDir(), "doc.md")
	go func() {
		done <- watchLoop(ctx, events, errs, target, 200*time.Millisecond, func() { runs <- struct{}{} })
	}()

	events <- fsnotify.Event{Name: filepath.Join(filepath.Dir(target), "other.md"), Op: fsnotify.Write}
	events <- fsnotify.Event{Name: target, Op: fsnotify.Chmod}
	events <- fsnotify.Event{Name: target, Op: fsnotify.Write}
	events <- fsnotify.Event{Name: target, Op: fsnotify.Create}

	select {
	case <-runs:
	case <-time.After(3 * time.Second):
		t.Fatal("change was never published")
	}
	select {
	case <-runs:
		t.Fatal("a burst of saves should publish once")
	case <-time.After(500 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watchLoop: %v", err)
	}
}

func TestWatchLoop_StopsWhenWatcherCloses(t *testing.T) {
	events := make(chan fsnotify.Event)
	close(events)

	err := watchLoop(context.Background(), events, make(chan error), "/doc.md", time.Second, func() {
		t.Error("nothing changed, nothing to publish")
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestPrintSpaces(t *testing.T) {
	var buf bytes.Buffer
	printSpaces(&buf, map[string]confluence.Space{
		"OPS":  {Key: "OPS", Name: "Operations"},
		"DOCS": {Key: "DOCS", Name: "Documentation"},
	})

	want := "spaces:\n  - DOCS: Documentation\n  - OPS: Operations\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrintConfig_RedactsToken(t *testing.T) {
	token := AuthToken
	t.Cleanup(func() { AuthToken = token })
	AuthToken = "hunter2"

	var buf bytes.Buffer
	printConfig(&buf)
	if strings.Contains(buf.String(), "hunter2") {
		t.Error("token leaked into config dump")
	}
}

func TestDescribeBuild(t *testing.T) {
	tests := []struct {
		name string
		info debug.BuildInfo
		want string
	}{
		{"untagged", debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, "devel"},
		{"tagged", debug.BuildInfo{Main: debug.Module{Version: "v1.2.0"}}, "v1.2.0"},
		{"vcs", debug.BuildInfo{
			Main: debug.Module{Version: "(devel)"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.time", Value: "2024-03-01T10:00:00Z"},
				{Key: "vcs.modified", Value: "true"},
			},
		}, "rev-abc123-dirty, 2024-03-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeBuild(&tt.info); got != tt.want {
				t.Errorf("describeBuild = %q, want %q", got, tt.want)
			}
		})
	}
}

// useServer points the connection globals at srv, and restores them afterwards.
func useServer(t *testing.T, srv *httptest.Server) *logging.Recorder {
	t.Helper()
	u, user, token, tokenCmd, quiet, jira, vcr, meta, lg := ConfluenceURL, AuthUsername, AuthToken, AuthTokenCmd, Quiet, ConvertJira, WithVCR, AddMeta, logger
	t.Cleanup(func() {
		ConfluenceURL, AuthUsername, AuthToken, AuthTokenCmd, Quiet, ConvertJira, WithVCR, AddMeta, logger = u, user, token, tokenCmd, quiet, jira, vcr, meta, lg
	})

	rec := &logging.Recorder{}
	ConfluenceURL, AuthUsername, AuthToken, AuthTokenCmd = srv.URL, "me@example.com", "tok", nil
	Quiet, ConvertJira, WithVCR, AddMeta = true, false, false, false
	logger = rec.Logger()
	return rec
}

func testCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{Use: "test"}
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)
	return cmd, &out
}

func TestWhoami(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wiki/rest/api/user/current" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if user, _, ok := r.BasicAuth(); !ok || user != "me@example.com" {
			t.Errorf("basic auth user = %q, %v", user, ok)
		}
		io.WriteString(w, `{"type":"known","accountId":"5b10a","displayName":"Paul","email":"paul@example.com"}`)
	}))
	defer srv.Close()
	useServer(t, srv)

	cmd, out := testCommand()
	if err := whoamiRun(cmd, nil); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if want := srv.URL + ": Paul <paul@example.com>\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestWhoami_Anonymous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"type":"anonymous","displayName":"Anonymous"}`)
	}))
	defer srv.Close()
	useServer(t, srv)

	cmd, out := testCommand()
	err := whoamiRun(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Fatalf("err = %v, want complaint about credentials", err)
	}
	if out.Len() != 0 {
		t.Errorf("printed %q", out.String())
	}
}

func TestCreate_ConflictReportedOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("%s %s on a conflict", r.Method, r.URL.Path)
			return
		}
		switch r.URL.Path {
		case "/wiki/rest/api/content/1":
			io.WriteString(w, `{"id":"1","type":"page","title":"Parent","space":{"key":"DOCS"}}`)
		case "/wiki/rest/api/content":
			io.WriteString(w, `{"results":[{"id":"7","type":"page","title":"Taken"}],"size":1}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	rec := useServer(t, srv)

	parent, title, overwrite := ParentID, Title, Overwrite
	t.Cleanup(func() { ParentID, Title, Overwrite = parent, title, overwrite })
	ParentID, Title, Overwrite = "1", "Taken", false

	doc := filepath.Join(t.TempDir(), "page.md")
	if err := os.WriteFile(doc, []byte("# Hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd, out := testCommand()
	err := createRun(cmd, []string{doc})
	if !errors.Is(err, publish.ErrConflict) {
		t.Fatalf("err = %v, want a conflict", err)
	}
	if n := strings.Count(err.Error(), "--overwrite"); n != 1 {
		t.Errorf("--overwrite mentioned %d times: %v", n, err)
	}
	if logged := rec.Messages(slog.LevelError); len(logged) != 0 {
		t.Errorf("conflict also logged: %v", logged)
	}
	if out.Len() != 0 {
		t.Errorf("printed %q", out.String())
	}
}

func TestCloseInto_ReportsCassetteFailure(t *testing.T) {
	failing := func(t *testing.T) *clients {
		t.Helper()
		dir := filepath.Join(t.TempDir(), "cassettes")
		c := &clients{cassettes: dir}
		if _, err := c.recorded("confluence"); err != nil {
			t.Fatal(err)
		}
		// A file where the cassette directory should be leaves the recording nowhere to go.
		if err := os.WriteFile(dir, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		return c
	}

	t.Run("command succeeded", func(t *testing.T) {
		c := failing(t)
		err := func() (err error) {
			defer c.closeInto(&err)
			return nil
		}()
		if err == nil || !strings.Contains(err.Error(), "cassette") {
			t.Fatalf("err = %v, want the save failure", err)
		}
	})

	t.Run("command failed", func(t *testing.T) {
		c := failing(t)
		boom := errors.New("publish failed")
		err := func() (err error) {
			defer c.closeInto(&err)
			return boom
		}()
		if !errors.Is(err, boom) || !strings.Contains(err.Error(), "cassette") {
			t.Fatalf("err = %v, want both failures", err)
		}
	})

	t.Run("nothing recorded", func(t *testing.T) {
		c := &clients{}
		err := func() (err error) {
			defer c.closeInto(&err)
			return nil
		}()
		if err != nil {
			t.Fatalf("err = %v", err)
		}
	})
}
