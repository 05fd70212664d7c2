// Copyright 2019 the Drone Authors. All rights reserved.
// Use of this source code is governed by the Blue Oak Model License
// that can be found in the LICENSE file.

package lastpass

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultBinary is the executable looked up on PATH.
	DefaultBinary = "lpass"
	// DefaultCacheTTL bounds how long health checks are reused.
	DefaultCacheTTL = 15 * time.Second

	loggedInMarker = "Logged in as"
)

type Config struct {
	Binary   string
	CacheTTL time.Duration
	// TextMode issues searches without --expand-multi, so lpass prints a
	// plain listing when more than one account matches.
	TextMode bool
	Runner   Runner
	Logger   logrus.FieldLogger
	// LookPath and Now are replaceable for tests.
	LookPath func(file string) (string, error)
	Now      func() time.Time
}

// Client queries the vault through the lpass cli.
type Client struct {
	binary   string
	textMode bool
	runner   Runner
	logger   logrus.FieldLogger
	lookPath func(file string) (string, error)
	now      func() time.Time

	installed     healthCache
	authenticated healthCache
}

func New(cfg Config) *Client {
	c := &Client{
		binary:   cfg.Binary,
		textMode: cfg.TextMode,
		runner:   cfg.Runner,
		logger:   cfg.Logger,
		lookPath: cfg.LookPath,
		now:      cfg.Now,
	}
	if c.binary == "" {
		c.binary = DefaultBinary
	}
	if c.runner == nil {
		c.runner = ExecRunner{}
	}
	if c.logger == nil {
		c.logger = logrus.New()
	}
	if c.lookPath == nil {
		c.lookPath = exec.LookPath
	}
	if c.now == nil {
		c.now = time.Now
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c.installed.ttl = ttl
	c.authenticated.ttl = ttl
	return c
}

// SearchEntries returns the accounts matching query in output order.
// An unknown query yields an empty slice and a nil error.
func (c *Client) SearchEntries(ctx context.Context, query string) ([]EntrySummary, error) {
	result := c.run(ctx, searchArgs(query, c.textMode)...)
	if isNotFound(result.Output) {
		return []EntrySummary{}, nil
	}
	if result.ExitCode != 0 {
		return nil, c.toolError(result, "search")
	}
	return ParseSearchOutput(query, result.Output, c.logger), nil
}

// GetEntry loads a single account by id.
func (c *Client) GetEntry(ctx context.Context, id string) (*EntryDetail, error) {
	result := c.run(ctx, "show", "--json", "--", id)
	if result.ExitCode != 0 {
		if isNotFound(result.Output) {
			return nil, fmt.Errorf("entry %q: %w", id, ErrEntryNotFound)
		}
		return nil, c.toolError(result, "lookup")
	}
	var entries []jsonEntry
	if err := json.Unmarshal([]byte(result.Output), &entries); err != nil {
		return nil, fmt.Errorf("decode entry %q: %w", id, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("entry %q: %w", id, ErrEntryNotFound)
	}
	return entries[0].detail(), nil
}

// IsToolInstalled reports whether the lpass executable is on PATH.
func (c *Client) IsToolInstalled() bool {
	now := c.now()
	if ok, hit := c.installed.get(now); hit {
		return ok
	}
	_, err := c.lookPath(c.binary)
	ok := err == nil
	c.installed.set(ok, now)
	return ok
}

// IsAuthenticated reports whether lpass has an open session.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	now := c.now()
	if ok, hit := c.authenticated.get(now); hit {
		return ok
	}
	result := c.run(ctx, "status")
	ok := strings.Contains(result.Output, loggedInMarker)
	c.authenticated.set(ok, now)
	return ok
}

// Ready returns ErrNotInstalled or ErrNotAuthenticated when a query
// cannot be attempted.
func (c *Client) Ready(ctx context.Context) error {
	if !c.IsToolInstalled() {
		return ErrNotInstalled
	}
	if !c.IsAuthenticated(ctx) {
		return ErrNotAuthenticated
	}
	return nil
}

// Invalidate forgets both cached health checks.
func (c *Client) Invalidate() {
	c.installed.invalidate()
	c.authenticated.invalidate()
}

// searchArgs passes each query word as its own name so lpass returns
// entries matching any of them; the parser keeps those matching all.
func searchArgs(query string, textMode bool) []string {
	args := []string{"show", "--json", "--expand-multi", "--basic-regexp", "--"}
	if textMode {
		args = []string{"show", "--json", "--basic-regexp", "--"}
	}
	return append(args, strings.Fields(query)...)
}

func (c *Client) run(ctx context.Context, args ...string) Result {
	c.logger.WithField("command", args[0]).Debug("running lpass")
	return c.runner.Run(ctx, c.binary, args...)
}

func (c *Client) toolError(result Result, op string) error {
	err := &ToolError{ExitCode: result.ExitCode, Output: result.Output}
	c.logger.WithError(err).WithField("op", op).Error("lpass command failed")
	return err
}
