// Copyright 2019 the Drone Authors. All rights reserved.
// Use of this source code is governed by the Blue Oak Model License
// that can be found in the LICENSE file.

package plugin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"example.com/drone-secret-lastpass/lastpass"
	"github.com/drone/drone-go/drone"
	"github.com/drone/drone-go/plugin/secret"
	"github.com/sirupsen/logrus"
)

// Vault is the subset of the lastpass client the plugin needs.
type Vault interface {
	Ready(ctx context.Context) error
	SearchEntries(ctx context.Context, query string) ([]lastpass.EntrySummary, error)
	GetEntry(ctx context.Context, id string) (*lastpass.EntryDetail, error)
}

type Config struct {
	Vault  Vault
	Logger logrus.FieldLogger
}

type plugin struct {
	vault  Vault
	logger logrus.FieldLogger
}

func New(cfg Config) (secret.Plugin, error) {
	if cfg.Vault == nil {
		return nil, errors.New("missing vault client")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &plugin{
		vault:  cfg.Vault,
		logger: logger,
	}, nil
}

func (p *plugin) Find(ctx context.Context, req *secret.Request) (*drone.Secret, error) {
	if req == nil {
		p.logger.Error("secret request failed: nil request")
		return nil, errors.New("nil request")
	}
	entry := p.logger.WithFields(logrus.Fields{
		"secret": req.Name,
		"path":   req.Path,
	})
	entry.Info("secret request received")
	if req.Name == "" {
		err := errors.New("secret name must not be empty")
		entry.WithError(err).Error("secret request failed")
		return nil, err
	}
	folder, name, fieldSelector, err := parseSecretPath(req.Path)
	if err != nil {
		entry.WithError(err).Error("secret request failed")
		return nil, err
	}

	if err := p.vault.Ready(ctx); err != nil {
		entry.WithError(err).Error("secret request failed")
		return nil, err
	}

	item, err := p.findEntry(ctx, folder, name)
	if err != nil {
		entry.WithError(err).Error("secret request failed")
		return nil, err
	}

	value, err := selectFieldValue(item, fieldSelector)
	if err != nil {
		entry.WithError(err).Error("secret request failed")
		return nil, err
	}

	entry.WithFields(logrus.Fields{
		"folder": folder,
		"entry":  item.ID,
		"field":  fieldSelector,
	}).Info("secret request succeeded")

	return &drone.Secret{
		Name:        req.Name,
		Data:        value,
		PullRequest: false,
	}, nil
}

// findEntry resolves folder/name to exactly one vault entry. Search hits
// carry display names, so candidates are compared on their loaded name.
func (p *plugin) findEntry(ctx context.Context, folder, name string) (*lastpass.EntryDetail, error) {
	summaries, err := p.vault.SearchEntries(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search entry %q: %w", name, err)
	}
	var matches []*lastpass.EntryDetail
	for _, summary := range summaries {
		if !strings.EqualFold(summary.Folder, folder) {
			continue
		}
		item, err := p.vault.GetEntry(ctx, summary.ID)
		if err != nil {
			return nil, fmt.Errorf("load entry %q: %w", summary.ID, err)
		}
		if strings.EqualFold(item.Name, name) {
			matches = append(matches, item)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("entry %q not found in folder %q", name, folder)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("multiple entries named %q found in folder %q", name, folder)
	}
}

// parseSecretPath splits "folder/name#field". The folder is everything
// before the last slash and may be empty.
func parseSecretPath(path string) (folder, name, field string, err error) {
	if i := strings.LastIndex(path, "#"); i >= 0 {
		field = strings.TrimSpace(path[i+1:])
		path = path[:i]
	}
	if i := strings.LastIndex(path, "/"); i >= 0 {
		folder = strings.TrimSpace(path[:i])
		name = strings.TrimSpace(path[i+1:])
	} else {
		name = strings.TrimSpace(path)
	}
	if name == "" {
		return "", "", "", fmt.Errorf("secret path must be formatted as [folder/]entry[#field]")
	}
	return folder, name, field, nil
}

func selectFieldValue(item *lastpass.EntryDetail, selector string) (string, error) {
	var value string
	switch strings.ToLower(selector) {
	case "":
		if item.IsNote {
			value = item.Note
		} else {
			value = item.Password
		}
	case "password":
		value = item.Password
	case "username":
		value = item.Username
	case "url":
		value = item.URL
	case "note", "notes":
		value = item.Note
	default:
		return "", fmt.Errorf("unknown field %q", selector)
	}
	if value == "" {
		if selector == "" {
			selector = "password"
		}
		return "", fmt.Errorf("entry %q does not contain %s", item.Name, selector)
	}
	return value, nil
}
