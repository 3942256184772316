// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/catctl/catctl/internal/log"
	"github.com/catctl/catctl/internal/record"
)

// Payload is one fetch: the raw document as received and the rows extracted
// from it.
type Payload struct {
	Raw  []byte
	Rows map[record.Kind][]record.Row
}

// Source supplies catalog payloads.
type Source interface {
	Fetch(ctx context.Context) (*Payload, error)
	String() string
}

// HTTPSource GETs the catalog from URL.
type HTTPSource struct {
	URL    string
	Root   string
	Client *http.Client
}

// DefaultTimeout bounds one HTTP fetch when no client is configured.
const DefaultTimeout = 60 * time.Second

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) (*Payload, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Debugf("fetching %s", s.URL)
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch %s: %s", s.URL, resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.URL, err)
	}
	log.Infof("fetched %s in %s", humanize.Bytes(uint64(len(raw))), time.Since(start).Round(time.Millisecond))

	return decode(raw, s.Root)
}

func (s *HTTPSource) String() string { return s.URL }

// FileSource reads a previously saved catalog document.
type FileSource struct {
	Path string
	Root string
}

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context) (*Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return decode(raw, s.Root)
}

func (s *FileSource) String() string { return s.Path }

func decode(raw []byte, root string) (*Payload, error) {
	rows, err := Extract(raw, root)
	if err != nil {
		return nil, err
	}
	return &Payload{Raw: raw, Rows: rows}, nil
}
