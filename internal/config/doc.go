// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for catctl's user
// configuration. The configuration is a YAML document named by CATCTL_CFG_FILE
// or located in the user's configuration directory, typically:
//   - Linux: $XDG_CONFIG_HOME/catctl.yaml or $HOME/.config/catctl.yaml
//   - macOS: $HOME/Library/Application Support/catctl.yaml
//   - Windows: %APPDATA%/catctl.yaml
//
// Keys are dotted paths ("s3.bucket"). When a namespace is set, usually the
// running subcommand, "<namespace>.<key>" is tried before "<key>".
package config
