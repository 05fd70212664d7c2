// Copyright 2019 the Drone Authors. All rights reserved.
// Use of this source code is governed by the Blue Oak Model License
// that can be found in the LICENSE file.

package main

import (
	"os"
	"time"

	"example.com/drone-secret-lastpass/lastpass"
	"example.com/drone-secret-lastpass/launcher"
	"github.com/atotto/clipboard"

	_ "github.com/joho/godotenv/autoload"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Version is set via -ldflags at build time.
var Version = "dev"

type spec struct {
	Debug      bool          `envconfig:"LAUNCHER_DEBUG"`
	MaxResults int           `envconfig:"LAUNCHER_MAX_RESULTS" default:"8"`
	MinQuery   int           `envconfig:"LAUNCHER_MIN_QUERY" default:"3"`
	Binary     string        `envconfig:"LPASS_BIN" default:"lpass"`
	CacheTTL   time.Duration `envconfig:"LPASS_CACHE_TTL" default:"15s"`
	TextMode   bool          `envconfig:"LPASS_TEXT_MODE"`
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

func main() {
	spec := new(spec)
	if err := envconfig.Process("", spec); err != nil {
		logrus.Fatal(err)
	}

	// stdout carries the result list, so logs go to stderr.
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if spec.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	vault := lastpass.New(lastpass.Config{
		Binary:   spec.Binary,
		CacheTTL: spec.CacheTTL,
		TextMode: spec.TextMode,
		Logger:   logger,
	})
	l, err := launcher.New(launcher.Config{
		Vault:          vault,
		Clipboard:      systemClipboard{},
		MaxResults:     spec.MaxResults,
		MinQueryLength: spec.MinQuery,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal(err)
	}

	if err := newCLIApp(l, os.Stdout).Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}
