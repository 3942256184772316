// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Command docsgen renders markdown and tldr pages for every catctl
// subcommand from the live command tree, plus optional examples kept in
// a YAML file.
package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/catctl/catctl/internal/command"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Extras holds hand-written content merged into the generated pages.
type Extras struct {
	Subcommands map[string]Extra `yaml:"subcommands"`
}

type Extra struct {
	Description string    `yaml:"description"`
	Examples    []Example `yaml:"examples"`
	Notes       []string  `yaml:"notes,omitempty"`
}

type Example struct {
	Command     string `yaml:"command"`
	Description string `yaml:"description"`
}

type Flag struct {
	Syntax      string
	Description string
	Default     string
}

type TemplateData struct {
	ID      string
	Short   string
	Usage   string
	Flags   []Flag
	Extra   Extra
	Date    string
	Version string
}

type Outputs struct {
	Template string
	Folder   string
	Prefix   string
	Suffix   string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: docsgen DOCS_DIR")
		os.Exit(1)
	}
	docs := os.Args[1]

	var extras Extras
	if data, err := os.ReadFile(filepath.Join(docs, "catctl.yaml")); err == nil {
		if err := yaml.Unmarshal(data, &extras); err != nil {
			panic(err)
		}
	}

	app, err := command.InitApp(context.Background(), []string{"catctl"})
	if err != nil {
		panic(err)
	}

	types := []Outputs{
		{Template: "templates/catctl.md.tmpl", Folder: filepath.Join(docs, "commands"), Suffix: ".md"},
		{Template: "templates/catctl.tldr.tmpl", Folder: filepath.Join(docs, "tldr"), Prefix: "catctl-", Suffix: ".md"},
	}

	for _, sub := range app.Commands {
		metadata := TemplateData{
			ID:      sub.Name,
			Short:   sub.Usage,
			Usage:   sub.UsageText,
			Flags:   flagsOf(sub),
			Extra:   extras.Subcommands[sub.Name],
			Date:    time.Now().Format("January 2, 2006"),
			Version: getVersion(),
		}

		for _, t := range types {
			if err := render(t, metadata); err != nil {
				panic(err)
			}
		}
	}
}

func render(t Outputs, metadata TemplateData) error {
	if err := os.MkdirAll(t.Folder, 0o755); err != nil { //nolint:mnd
		return err
	}

	tmpl, err := template.ParseFS(templates, t.Template)
	if err != nil {
		return err
	}

	path := filepath.Join(t.Folder, t.Prefix+metadata.ID+t.Suffix)
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Println("Generating", path)
	return tmpl.Execute(file, metadata)
}

// flagsOf lists a command's visible flags sorted by name.
func flagsOf(cmd *cli.Command) []Flag {
	var flags []Flag
	for _, f := range cmd.Flags {
		if vf, ok := f.(cli.VisibleFlag); ok && !vf.IsVisible() {
			continue
		}

		names := f.Names()
		syntax := make([]string, len(names))
		for i, n := range names {
			if len(n) == 1 {
				syntax[i] = "-" + n
			} else {
				syntax[i] = "--" + n
			}
		}

		var usage, def string
		if df, ok := f.(cli.DocGenerationFlag); ok {
			usage = df.GetUsage()
			def = df.GetDefaultText()
		}
		flags = append(flags, Flag{Syntax: strings.Join(syntax, ", "), Description: usage, Default: def})
	}

	sort.Slice(flags, func(i, j int) bool {
		return flags[i].Syntax < flags[j].Syntax
	})
	return flags
}

// getVersion returns the version string from git tags, stripping the leading
// "v" prefix. Falls back to "dev" if git describe fails.
func getVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--abbrev=0").Output()
	if err != nil {
		return "dev"
	}

	version := strings.TrimSpace(string(out))
	return strings.TrimPrefix(version, "v")
}
