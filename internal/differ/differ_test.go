// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package differ

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catctl/catctl/internal/snapshot"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name    string
		left    string
		right   string
		opts    Options
		want    []string
		notWant []string
		wantErr bool
	}{
		{
			name:  "identical",
			left:  `{"a":1}`,
			right: `{"a":1}`,
			want:  []string{Identical},
		},
		{
			name:  "changed value",
			left:  `{"price":10,"title":"Milk"}`,
			right: `{"price":12.5,"title":"Milk"}`,
			want:  []string{`"price": 10`, `"price": 12.5`},
		},
		{
			name:    "ignored key not rendered",
			left:    `{"price":10,"meta":"x"}`,
			right:   `{"price":11,"meta":"x"}`,
			opts:    Options{Ignore: []string{"meta"}},
			notWant: []string{"meta"},
		},
		{
			name:    "empty input",
			left:    ``,
			right:   `{}`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			left:    `{`,
			right:   `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Diff(&buf, []byte(tt.left), []byte(tt.right), tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, buf.String(), w)
			}
		})
	}
}

func handles() []snapshot.Handle {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var hs []snapshot.Handle
	for i := range 3 {
		ts := base.Add(time.Duration(i) * time.Hour)
		hs = append(hs, snapshot.Handle{Name: snapshot.FormatStamp(ts), Stamp: ts, RawDir: "raw"})
	}
	return hs
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestModelSelection(t *testing.T) {
	hs := handles()
	m := press(model{items: hs}, " ", "down", "down", " ").(model)
	require.Len(t, m.selected, 2)
	assert.Equal(t, hs[0].Name, m.selected[0].Name)
	assert.Equal(t, hs[2].Name, m.selected[1].Name)

	// A third selection is refused and toggling removes.
	m = press(m, "up", " ").(model)
	assert.Len(t, m.selected, 2)
	m = press(m, "down", " ").(model)
	require.Len(t, m.selected, 1)
	assert.Equal(t, hs[0].Name, m.selected[0].Name)

	assert.Contains(t, m.View(), "[x]")
}

func TestModelQuitClears(t *testing.T) {
	m := press(model{items: handles()}, " ", "q").(model)
	assert.Nil(t, m.selected)
}

func TestModelCursorBounds(t *testing.T) {
	m := press(model{items: handles()}, "up", "down", "down", "down", "down").(model)
	assert.Equal(t, 2, m.cursor)
}
