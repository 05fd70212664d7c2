// Copyright 2019 the Drone Authors. All rights reserved.
// Use of this source code is governed by the Blue Oak Model License
// that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"io"
	"strings"

	"example.com/drone-secret-lastpass/launcher"
	"github.com/urfave/cli/v2"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(l *launcher.Launcher, out io.Writer) *cli.App {
	app := &cli.App{
		Name:    "lpass-launcher",
		Usage:   "Search the LastPass vault from an application launcher",
		Version: Version,
		Writer:  out,
		Commands: []*cli.Command{
			queryCmd(l, out),
			selectCmd(l, out),
			copyCmd(l),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func queryCmd(l *launcher.Launcher, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Search the vault and print a result list",
		ArgsUsage: "<words...>",
		Action: func(c *cli.Context) error {
			query := strings.Join(c.Args().Slice(), " ")
			return outputJSON(out, l.Query(c.Context, query))
		},
	}
}

func selectCmd(l *launcher.Launcher, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "select",
		Usage:     "Print the copy actions for an entry",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("select requires exactly one entry id", 1)
			}
			result, err := l.Select(c.Context, c.Args().First())
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return outputJSON(out, result)
		},
	}
}

func copyCmd(l *launcher.Launcher) *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "Copy a field of an entry to the clipboard",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "field", Aliases: []string{"f"}, Value: launcher.FieldPassword, Usage: "Field to copy: username|password|note|url"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("copy requires exactly one entry id", 1)
			}
			if err := l.Copy(c.Context, c.Args().First(), c.String("field")); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

func outputJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
