// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os"
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/catctl/catctl/internal/fetch"
	"github.com/catctl/catctl/internal/record"
)

// newSchemaFlag returns the --schema flag.
func newSchemaFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "schema",
		Usage:       "list the fields of the selected kind",
		HideDefault: true,
	}
}

// newTldrFlag returns the --tldr flag, hidden unless tldr is installed.
func newTldrFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

// NewGlobalFlags returns the output shaping flags every listing command takes.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.EnvVars("CATCTL_COLOR"),
			Value:   isTerminal(),
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:    "local",
			Aliases: []string{"l"},
			Usage:   "show local timestamps",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.IntFlag{
			Name:   "padding",
			Usage:  "spaces between text columns",
			Value:  2,
			Hidden: true,
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
		},
	}

	return
}

// NewStoreFlags returns the flags selecting the snapshot store. params[0] is
// the command namespace and params[1] the config file; with both, values are
// also sourced from the config file.
func NewStoreFlags(params ...string) []cli.Flag {
	flags := []*cli.StringFlag{
		{
			Name:    "store",
			Usage:   "snapshot store, local or s3",
			Sources: cli.EnvVars("CATCTL_STORE"),
			Value:   "local",
			Validator: func(value string) error {
				return FlagValidators(value, StoreValidator)
			},
		},
		{
			Name:    "root",
			Aliases: []string{"r"},
			Usage:   "local snapshot directory",
			Sources: cli.EnvVars("CATCTL_ROOT"),
			Value:   "data",
		},
		{
			Name:    "bucket",
			Usage:   "S3 bucket",
			Sources: cli.EnvVars("CATCTL_BUCKET"),
		},
		{
			Name:    "prefix",
			Usage:   "S3 key prefix",
			Sources: cli.EnvVars("CATCTL_PREFIX"),
		},
		{
			Name:    "region",
			Usage:   "AWS region",
			Sources: cli.EnvVars("CATCTL_REGION", "AWS_REGION"),
		},
		{
			Name:    "endpoint",
			Usage:   "S3 endpoint URL for S3 compatible services",
			Sources: cli.EnvVars("CATCTL_ENDPOINT"),
		},
		{
			Name:    "profile",
			Usage:   "AWS shared config profile",
			Sources: cli.EnvVars("CATCTL_PROFILE", "AWS_PROFILE"),
		},
		{
			Name:    "source-root",
			Usage:   "JSON path of the catalog inside the fetched document",
			Sources: cli.EnvVars("CATCTL_SOURCE_ROOT"),
			Value:   fetch.DefaultRoot,
		},
	}

	// Config keys for the S3 settings are grouped under s3.
	keys := map[string]string{
		"bucket":      "s3.bucket",
		"prefix":      "s3.prefix",
		"region":      "s3.region",
		"endpoint":    "s3.endpoint",
		"profile":     "s3.profile",
		"source-root": "source_root",
	}

	out := make([]cli.Flag, 0, len(flags))
	for _, f := range flags {
		if len(params) == 2 && params[1] != "" {
			f = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], f, keys[f.Name])
		}
		out = append(out, f)
	}
	return out
}

// NewLedgerFlag returns the --ledger flag. "-" disables the ledger.
func NewLedgerFlag(params ...string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:    "ledger",
		Usage:   "run ledger database, - to disable",
		Sources: cli.EnvVars("CATCTL_LEDGER"),
	}
	if len(params) == 2 && params[1] != "" {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}
	return flag
}

// NewKindFlag returns the --kind flag.
func NewKindFlag(value string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "kind",
		Aliases: []string{"k"},
		Usage:   "record kind: category, product or hierarchy_edge",
		Value:   value,
		Validator: func(value string) error {
			return FlagValidators(value, KindValidator)
		},
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain. key defaults to the flag name.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag, key ...string) *cli.StringFlag {
	k := flag.Name
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}

	if ns != "" {
		src := yaml.YAML(ns+"."+k, altsrc.StringSourcer(path))
		flag.Sources.Chain = append(flag.Sources.Chain, src)
	}

	src := yaml.YAML(k, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas checks if the given executable is on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}

// isTerminal reports whether stdout is a terminal and NO_COLOR is unset.
func isTerminal() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// kindNames lists the values --kind accepts.
func kindNames() []string {
	kinds := record.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}
