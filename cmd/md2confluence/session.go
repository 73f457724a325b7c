/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/toothbrush/md2confluence/confluence"
	"github.com/toothbrush/md2confluence/internal/logging"
	"github.com/toothbrush/md2confluence/jira"
	"github.com/toothbrush/md2confluence/publish"
	"gopkg.in/dnaeon/go-vcr.v3/cassette"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"
)

const tokenEnv = "MD2CONFLUENCE_AUTH_TOKEN"

// Settings are the resolved credentials for one Atlassian host.
type Settings struct {
	Host     string
	Username string
	Token    string
}

func (s *Settings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Host, validation.Required, is.URL),
		validation.Field(&s.Username, validation.Required.Error("set --auth-username or auth-username in the config file")),
		validation.Field(&s.Token, validation.Required.Error("set --auth-token, " + tokenEnv + " or --auth-token-cmd")),
	)
}

// hostOf cuts a page URL such as https://ORG.atlassian.net/wiki/spaces/X down to
// https://ORG.atlassian.net.
func hostOf(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("cmd: couldn't parse url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("cmd: url %q needs a scheme and a host, e.g. https://ORG.atlassian.net", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}

// authToken picks the token from the flag, the environment, or the output of
// --auth-token-cmd, in that order.
func authToken() (string, error) {
	if AuthToken != "" {
		return AuthToken, nil
	}
	if t := os.Getenv(tokenEnv); t != "" {
		return t, nil
	}
	if len(AuthTokenCmd) < 1 {
		return "", nil
	}

	tokenCmdOutput, err := exec.Command(AuthTokenCmd[0], AuthTokenCmd[1:]...).Output()
	if err != nil {
		return "", fmt.Errorf("cmd: couldn't execute auth-token-cmd '%v': %w", AuthTokenCmd, err)
	}
	return strings.Split(string(tokenCmdOutput), "\n")[0], nil
}

// clients hands out API clients for whichever host a command ends up talking to, and owns
// the VCR recorders behind them.
type clients struct {
	token string
	// cassettes is the directory --with-vcr recordings live in.
	cassettes string
	recorders []*recorder.Recorder
}

func newClients() (*clients, error) {
	token, err := authToken()
	if err != nil {
		return nil, err
	}
	return &clients{token: token, cassettes: "fixtures"}, nil
}

func (c *clients) settings(host string) (Settings, error) {
	s := Settings{Host: host, Username: AuthUsername, Token: c.token}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("cmd: incomplete settings for %s: %w", host, err)
	}
	return s, nil
}

func (c *clients) confluence(host string) (*confluence.API, error) {
	s, err := c.settings(host)
	if err != nil {
		return nil, err
	}
	api, err := confluence.NewAPI(s.Host, s.Username, s.Token)
	if err != nil {
		return nil, fmt.Errorf("cmd: couldn't instantiate Confluence API: %w", err)
	}
	if WithVCR {
		api.Client, err = c.recorded("confluence")
		if err != nil {
			return nil, err
		}
	}
	return api, nil
}

func (c *clients) jira(host string) (*jira.API, error) {
	s, err := c.settings(host)
	if err != nil {
		return nil, err
	}
	api, err := jira.NewAPI(s.Host, s.Username, s.Token)
	if err != nil {
		return nil, fmt.Errorf("cmd: couldn't instantiate Jira API: %w", err)
	}
	if WithVCR {
		api.Client, err = c.recorded("jira")
		if err != nil {
			return nil, err
		}
	}
	return api, nil
}

// connect satisfies publish.Connector.  Jira Cloud lives on the same host as Confluence.
func (c *clients) connect(ctx context.Context, host string) (*publish.Session, error) {
	pages, err := c.confluence(host)
	if err != nil {
		return nil, err
	}
	sess := &publish.Session{Pages: pages}
	if ConvertJira {
		issues, err := c.jira(host)
		if err != nil {
			return nil, err
		}
		sess.Issues = issues
	}
	return sess, nil
}

func (c *clients) recorded(cassetteName string) (*http.Client, error) {
	// set up VCR recordings.
	opts := &recorder.Options{
		CassetteName:       filepath.Join(c.cassettes, cassetteName),
		Mode:               recorder.ModeReplayWithNewEpisodes,
		SkipRequestLatency: true,
		RealTransport:      http.DefaultTransport,
	}
	r, err := recorder.NewWithOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("cmd: couldn't set up go-vcr recording: %w", err)
	}

	// Add a hook which removes Authorization headers from all requests
	hook := func(i *cassette.Interaction) error {
		delete(i.Request.Headers, "Authorization")
		return nil
	}
	r.AddHook(hook, recorder.AfterCaptureHook)
	r.SetReplayableInteractions(true)

	c.recorders = append(c.recorders, r)
	return r.GetDefaultClient(), nil
}

// Close flushes any cassettes to disk.
func (c *clients) Close() error {
	var errs []error
	for _, r := range c.recorders {
		if err := r.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("cmd: couldn't save go-vcr cassette: %w", err))
		}
	}
	c.recorders = nil
	return errors.Join(errs...)
}

// closeInto is for deferring: it closes c and adds any failure to *err.
func (c *clients) closeInto(err *error) {
	if cerr := c.Close(); cerr != nil {
		*err = errors.Join(*err, cerr)
	}
}

// newPublisher wires the flags into a publish.Publisher.
func newPublisher(c *clients) (*publish.Publisher, error) {
	host, err := hostOf(ConfluenceURL)
	if err != nil {
		return nil, err
	}
	return &publish.Publisher{
		Host:    host,
		Connect: c.connect,
		Options: publish.Options{
			AddMeta:       AddMeta,
			InfoPanel:     AddInfo,
			Label:         AddLabel,
			ConvertIssues: ConvertJira,
		},
		Logger:   logger,
		Progress: progressOutput(),
	}, nil
}

// progressOutput is where upload bars go; nowhere when nobody is watching.
func progressOutput() io.Writer {
	if Quiet || !logging.IsTerminal(os.Stderr) {
		return nil
	}
	return os.Stderr
}
