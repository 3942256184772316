// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/catctl/catctl/internal/attrs"
	"github.com/catctl/catctl/internal/fetch"
	"github.com/catctl/catctl/internal/ledger"
	"github.com/catctl/catctl/internal/log"
	"github.com/catctl/catctl/internal/meta"
	"github.com/catctl/catctl/internal/output"
	"github.com/catctl/catctl/internal/snapshot"
	"github.com/catctl/catctl/internal/store"
)

// ledgerDisabled is the --ledger value that turns the ledger off.
const ledgerDisabled = "-"

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList, err error) {
	for _, d := range defaults {
		if err = al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err = al.Set(extras); err != nil {
			return nil, fmt.Errorf("invalid --attrs: %w", err)
		}
	}
	err = al.SetGlobalTransformSpec()
	return
}

// Emit marshals rows to a JSON array and passes it to the common output
// routine.
func Emit(cmd *cli.Command, rows any, al attrs.AttrList) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return output.SliceDiceSpit(raw, al, cmd, Writer(cmd), nil)
}

// Writer returns the root command's writer, stdout by default.
func Writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// StoreConfig collects the store flags.
func StoreConfig(cmd *cli.Command) store.Config {
	return store.Config{
		Store:    cmd.String("store"),
		Root:     cmd.String("root"),
		Bucket:   cmd.String("bucket"),
		Prefix:   cmd.String("prefix"),
		Region:   cmd.String("region"),
		Endpoint: cmd.String("endpoint"),
		Profile:  cmd.String("profile"),
	}
}

// OpenStore opens the store the command's flags select. Legacy containers
// are decoded with --source-root.
func OpenStore(ctx context.Context, cmd *cli.Command) (snapshot.Store, error) {
	st, err := store.NewStore(ctx, StoreConfig(cmd), fetch.Decoder(cmd.String("source-root")))
	if err != nil {
		return nil, err
	}
	log.Debugf("store: %s", st)
	return st, nil
}

// LedgerPath resolves --ledger. An empty result means the ledger is off.
func LedgerPath(cmd *cli.Command) string {
	p := cmd.String("ledger")
	switch p {
	case ledgerDisabled:
		return ""
	case "":
		dir, err := os.UserConfigDir()
		if err != nil {
			return ""
		}
		return filepath.Join(dir, "catctl", "ledger.db")
	default:
		return p
	}
}

// OpenLedger opens the run ledger, or returns nil when it is disabled.
func OpenLedger(ctx context.Context, cmd *cli.Command) (*ledger.Ledger, error) {
	p := LedgerPath(cmd)
	if p == "" {
		log.Debug("ledger disabled")
		return nil, nil
	}
	return ledger.Open(ctx, p)
}

// ResolveSnapshots lists the store and resolves specs against it.
func ResolveSnapshots(ctx context.Context, st snapshot.Store, specs ...string) ([]snapshot.Handle, error) {
	handles, err := st.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(handles) == 0 {
		return nil, fmt.Errorf("%w in %s", snapshot.ErrNotFound, st)
	}
	return snapshot.Resolve(handles, specs...)
}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr catctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "catctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}
