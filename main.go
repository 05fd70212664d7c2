// Copyright 2019 the Drone Authors. All rights reserved.
// Use of this source code is governed by the Blue Oak Model License
// that can be found in the LICENSE file.

package main

import (
	"net/http"
	"time"

	"example.com/drone-secret-lastpass/lastpass"
	"example.com/drone-secret-lastpass/plugin"
	"github.com/drone/drone-go/plugin/secret"

	_ "github.com/joho/godotenv/autoload"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type spec struct {
	Bind     string        `envconfig:"DRONE_BIND"`
	Debug    bool          `envconfig:"DRONE_DEBUG"`
	Secret   string        `envconfig:"DRONE_SECRET"`
	Binary   string        `envconfig:"LPASS_BIN" default:"lpass"`
	CacheTTL time.Duration `envconfig:"LPASS_CACHE_TTL" default:"15s"`
	TextMode bool          `envconfig:"LPASS_TEXT_MODE"`
}

func main() {
	spec := new(spec)
	err := envconfig.Process("", spec)
	if err != nil {
		logrus.Fatal(err)
	}

	if spec.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logger := logrus.StandardLogger()
	if spec.Secret == "" {
		logger.Fatalln("missing secret key")
	}
	if spec.Bind == "" {
		spec.Bind = ":3000"
	}

	vault := lastpass.New(lastpass.Config{
		Binary:   spec.Binary,
		CacheTTL: spec.CacheTTL,
		TextMode: spec.TextMode,
		Logger:   logger,
	})
	if !vault.IsToolInstalled() {
		logger.Fatalf("%s not found in PATH", spec.Binary)
	}

	plug, err := plugin.New(plugin.Config{
		Vault:  vault,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal(err)
	}

	handler := secret.Handler(
		spec.Secret,
		plug,
		logger,
	)

	logger.Infof("server listening on address %s", spec.Bind)

	http.Handle("/", handler)
	logger.Fatal(http.ListenAndServe(spec.Bind, nil))
}
