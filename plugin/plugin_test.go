// Copyright 2019 the Drone Authors. All rights reserved.
// Use of this source code is governed by the Blue Oak Model License
// that can be found in the LICENSE file.

package plugin

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"example.com/drone-secret-lastpass/lastpass"
	"github.com/drone/drone-go/drone"
	"github.com/drone/drone-go/plugin/secret"
	"github.com/sirupsen/logrus"
)

func TestParseSecretPath(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantFolder string
		wantName   string
		wantField  string
		wantErr    bool
	}{
		{"basic", "Folder/Entry", "Folder", "Entry", "", false},
		{"with field", "Folder/Entry#username", "Folder", "Entry", "username", false},
		{"nested folder", "Shared-Ops/Prod/Database#password", "Shared-Ops/Prod", "Database", "password", false},
		{"no folder", "Entry", "", "Entry", "", false},
		{"trim spaces", " Folder / Entry # url ", "Folder", "Entry", "url", false},
		{"missing entry", "Folder/", "", "", "", true},
		{"empty", "#password", "", "", "", true},
	}

	for _, tc := range tests {
		folder, name, field, err := parseSecretPath(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if folder != tc.wantFolder || name != tc.wantName || field != tc.wantField {
			t.Fatalf("%s: got %q/%q/%q", tc.name, folder, name, field)
		}
	}
}

func TestSelectFieldValue(t *testing.T) {
	item := &lastpass.EntryDetail{
		Name:     "Sample",
		URL:      "https://example.com",
		Username: "octocat",
		Password: "hunter2",
		Note:     "secret note",
	}

	tests := []struct {
		selector string
		want     string
	}{
		{"", "hunter2"},
		{"Password", "hunter2"},
		{"username", "octocat"},
		{"url", "https://example.com"},
		{"notes", "secret note"},
	}
	for _, tc := range tests {
		value, err := selectFieldValue(item, tc.selector)
		if err != nil || value != tc.want {
			t.Fatalf("selector %q: %v value=%q", tc.selector, err, value)
		}
	}

	if _, err := selectFieldValue(item, "totp"); err == nil {
		t.Fatal("expected error for unknown field")
	}

	note := &lastpass.EntryDetail{Name: "Wifi", Note: "psk", IsNote: true}
	value, err := selectFieldValue(note, "")
	if err != nil || value != "psk" {
		t.Fatalf("secure note lookup failed: %v value=%q", err, value)
	}
	if _, err := selectFieldValue(note, "password"); err == nil {
		t.Fatal("expected error for empty password")
	}
}

type fakeRunner struct {
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) lastpass.Result {
	f.calls = append(f.calls, args)
	positional := strings.Join(positionalArgs(args), "|")
	switch {
	case args[0] == "status":
		return lastpass.Result{Output: "Logged in as octocat@example.com."}
	case positional == "Database|Credentials":
		return lastpass.Result{Output: `[
			{"id":"11","name":"Database Credentials","group":"Production"},
			{"id":"12","name":"Database Credentials","group":"Staging"},
			{"id":"13","name":"Database Credentials Old","group":"Production"}
		]`}
	case positional == "11":
		return lastpass.Result{Output: `[{"id":"11","name":"Database Credentials","username":"db","password":"hunter2","note":""}]`}
	case positional == "13":
		return lastpass.Result{Output: `[{"id":"13","name":"Database Credentials Old","username":"db","password":"old","note":""}]`}
	}
	return lastpass.Result{ExitCode: 1, Output: "Error: Could not find specified account(s)."}
}

func positionalArgs(args []string) []string {
	for i, arg := range args {
		if arg == "--" {
			return args[i+1:]
		}
	}
	return nil
}

func newTestPlugin(t *testing.T, runner lastpass.Runner) secret.Plugin {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	vault := lastpass.New(lastpass.Config{
		Runner:   runner,
		Logger:   logger,
		LookPath: func(string) (string, error) { return "/usr/bin/lpass", nil },
	})
	plug, err := New(Config{Vault: vault, Logger: logger})
	if err != nil {
		t.Fatalf("failed to create plugin: %v", err)
	}
	return plug
}

func TestPluginFind(t *testing.T) {
	plug := newTestPlugin(t, &fakeRunner{})

	secretValue, err := plug.Find(context.Background(), &secret.Request{
		Name: "db_password",
		Path: "Production/Database Credentials",
		Repo: drone.Repo{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secretValue == nil || secretValue.Data != "hunter2" {
		t.Fatalf("unexpected secret: %#v", secretValue)
	}

	secretValue, err = plug.Find(context.Background(), &secret.Request{
		Name: "db_user",
		Path: "Production/Database Credentials#username",
	})
	if err != nil || secretValue.Data != "db" {
		t.Fatalf("username lookup failed: %v %#v", err, secretValue)
	}
}

func TestPluginFindErrors(t *testing.T) {
	plug := newTestPlugin(t, &fakeRunner{})

	tests := []struct {
		name string
		req  *secret.Request
	}{
		{"nil request", nil},
		{"empty name", &secret.Request{Path: "Production/Database Credentials"}},
		{"bad path", &secret.Request{Name: "x", Path: "Production/"}},
		{"wrong folder", &secret.Request{Name: "x", Path: "Development/Database Credentials"}},
		{"unknown entry", &secret.Request{Name: "x", Path: "Production/Nothing"}},
	}
	for _, tc := range tests {
		if _, err := plug.Find(context.Background(), tc.req); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestPluginFindNotAuthenticated(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	runner := &statusRunner{output: "Not logged in."}
	vault := lastpass.New(lastpass.Config{
		Runner:   runner,
		Logger:   logger,
		LookPath: func(string) (string, error) { return "/usr/bin/lpass", nil },
	})
	plug, err := New(Config{Vault: vault, Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	_, err = plug.Find(context.Background(), &secret.Request{Name: "x", Path: "A/B"})
	if !errors.Is(err, lastpass.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	for _, call := range runner.calls {
		if call != "status" {
			t.Fatalf("unexpected lpass invocation %q", call)
		}
	}
}

type statusRunner struct {
	output string
	calls  []string
}

func (s *statusRunner) Run(_ context.Context, _ string, args ...string) lastpass.Result {
	s.calls = append(s.calls, strings.Join(args, " "))
	return lastpass.Result{Output: s.output}
}

func TestNewRequiresVault(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without vault")
	}
}
