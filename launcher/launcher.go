// Copyright 2019 the Drone Authors. All rights reserved.
// Use of this source code is governed by the Blue Oak Model License
// that can be found in the LICENSE file.

// Package launcher renders vault searches as launcher result lists.
package launcher

import (
	"context"
	"errors"
	"fmt"

	"example.com/drone-secret-lastpass/lastpass"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxResults     = 8
	DefaultMinQueryLength = 3

	// InstallURL documents how to install the lpass cli.
	InstallURL = "https://github.com/lastpass/lastpass-cli"
)

// Action kinds carried by result items.
const (
	ActionNone    = "hide"
	ActionOpenURL = "open_url"
	ActionSelect  = "select"
	ActionCopy    = "copy"
)

// Field names accepted by Copy.
const (
	FieldUsername = "username"
	FieldPassword = "password"
	FieldNote     = "note"
	FieldURL      = "url"
)

type Item struct {
	Title         string  `json:"title"`
	Subtitle      string  `json:"subtitle,omitempty"`
	Highlightable bool    `json:"highlightable"`
	Action        *Action `json:"action"`
}

type Action struct {
	Type  string `json:"type"`
	URL   string `json:"url,omitempty"`
	ID    string `json:"id,omitempty"`
	Field string `json:"field,omitempty"`
}

type ResultList struct {
	Items []Item `json:"items"`
}

// Vault is the subset of the lastpass client the launcher uses.
type Vault interface {
	Ready(ctx context.Context) error
	SearchEntries(ctx context.Context, query string) ([]lastpass.EntrySummary, error)
	GetEntry(ctx context.Context, id string) (*lastpass.EntryDetail, error)
}

// Clipboard receives copied values.
type Clipboard interface {
	WriteAll(text string) error
}

type Config struct {
	Vault          Vault
	Clipboard      Clipboard
	MaxResults     int
	MinQueryLength int
	Logger         logrus.FieldLogger
}

type Launcher struct {
	vault      Vault
	clipboard  Clipboard
	maxResults int
	minQuery   int
	logger     logrus.FieldLogger
}

func New(cfg Config) (*Launcher, error) {
	if cfg.Vault == nil {
		return nil, errors.New("missing vault client")
	}
	l := &Launcher{
		vault:      cfg.Vault,
		clipboard:  cfg.Clipboard,
		maxResults: cfg.MaxResults,
		minQuery:   cfg.MinQueryLength,
		logger:     cfg.Logger,
	}
	if l.maxResults <= 0 {
		l.maxResults = DefaultMaxResults
	}
	if l.minQuery <= 0 {
		l.minQuery = DefaultMinQueryLength
	}
	if l.logger == nil {
		l.logger = logrus.New()
	}
	return l, nil
}

// Query answers a keyword query. Failures are rendered as items so the
// host always has something to show.
func (l *Launcher) Query(ctx context.Context, query string) ResultList {
	switch err := l.vault.Ready(ctx); {
	case errors.Is(err, lastpass.ErrNotInstalled):
		return list(Item{
			Title:    "lpass cli was not found on your system.",
			Subtitle: "Press enter and follow the instructions for your system",
			Action:   &Action{Type: ActionOpenURL, URL: InstallURL},
		})
	case errors.Is(err, lastpass.ErrNotAuthenticated):
		return list(Item{
			Title:    "you are not logged in on LastPass",
			Subtitle: "Open a terminal and run lpass login <username> to login.",
			Action:   hide(),
		})
	}

	if len([]rune(query)) < l.minQuery {
		return list(Item{
			Title:         "Keep typing for searching in your Vault ...",
			Highlightable: true,
			Action:        hide(),
		})
	}

	entries, err := l.vault.SearchEntries(ctx, query)
	if err != nil {
		l.logger.WithError(err).Warn("vault search failed")
		return list(Item{
			Title:    errorOutput(err),
			Subtitle: "LastPass Error",
			Action:   hide(),
		})
	}
	if len(entries) == 0 {
		return list(Item{
			Title:  "No passwords found matching your criteria",
			Action: hide(),
		})
	}

	if len(entries) > l.maxResults {
		entries = entries[:l.maxResults]
	}
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, Item{
			Title:         entry.Name,
			Subtitle:      entry.Folder,
			Highlightable: true,
			Action:        &Action{Type: ActionSelect, ID: entry.ID},
		})
	}
	return ResultList{Items: items}
}

// Select lists the copy actions available for an entry.
func (l *Launcher) Select(ctx context.Context, id string) (ResultList, error) {
	entry, err := l.vault.GetEntry(ctx, id)
	if err != nil {
		return ResultList{}, err
	}
	if entry.IsNote {
		return list(Item{
			Title:  "Copy note to clipboard",
			Action: &Action{Type: ActionCopy, ID: entry.ID, Field: FieldNote},
		}), nil
	}
	return ResultList{Items: []Item{
		{
			Title:  fmt.Sprintf("Copy username to clipboard for %s", entry.Name),
			Action: &Action{Type: ActionCopy, ID: entry.ID, Field: FieldUsername},
		},
		{
			Title:  fmt.Sprintf("Copy password to clipboard for %s", entry.Name),
			Action: &Action{Type: ActionCopy, ID: entry.ID, Field: FieldPassword},
		},
	}}, nil
}

// Copy writes one field of an entry to the clipboard.
func (l *Launcher) Copy(ctx context.Context, id, field string) error {
	if l.clipboard == nil {
		return errors.New("no clipboard configured")
	}
	entry, err := l.vault.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	var value string
	switch field {
	case FieldUsername:
		value = entry.Username
	case FieldPassword:
		value = entry.Password
	case FieldNote:
		value = entry.Note
	case FieldURL:
		value = entry.URL
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	if err := l.clipboard.WriteAll(value); err != nil {
		return fmt.Errorf("copy %s: %w", field, err)
	}
	l.logger.WithFields(logrus.Fields{"entry": id, "field": field}).Info("copied to clipboard")
	return nil
}

func errorOutput(err error) string {
	var toolErr *lastpass.ToolError
	if errors.As(err, &toolErr) {
		return toolErr.Output
	}
	return err.Error()
}

func list(item Item) ResultList {
	return ResultList{Items: []Item{item}}
}

func hide() *Action {
	return &Action{Type: ActionNone}
}
