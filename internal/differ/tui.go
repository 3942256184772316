// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/catctl/catctl/internal/snapshot"
)

// SelectSnapshots lets the user pick two snapshots interactively. It returns
// nil if the picker is abandoned. The result is in ascending stamp order.
func SelectSnapshots(items []snapshot.Handle, opts ...tea.ProgramOption) ([]snapshot.Handle, error) {
	p := tea.NewProgram(model{items: items}, opts...)
	m, err := p.Run()
	if err != nil {
		return nil, err
	}
	selected := m.(model).selected
	if len(selected) != 2 {
		return nil, nil
	}
	snapshot.SortHandles(selected)
	return selected, nil
}

type model struct {
	items    []snapshot.Handle
	cursor   int
	selected []snapshot.Handle
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "esc", "ctrl+c":
		m.selected = nil
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case " ":
		if len(m.items) == 0 {
			break
		}
		if i := m.index(m.items[m.cursor]); i >= 0 {
			m.selected = append(m.selected[:i:i], m.selected[i+1:]...)
		} else if len(m.selected) < 2 {
			m.selected = append(m.selected, m.items[m.cursor])
		}
	case "enter":
		if len(m.selected) == 2 {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString("Select two snapshots:\n\n")
	for i, h := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		mark := " "
		if m.index(h) >= 0 {
			mark = "x"
		}
		fmt.Fprintf(&b, "%s [%s] %4d %s\n", cursor, mark, i+1, h.Name)
	}
	b.WriteString("\nSPACE: toggle, ENTER: go, Q/ESCAPE: quit\n")
	return b.String()
}

func (m model) index(h snapshot.Handle) int {
	for i, s := range m.selected {
		if s.Name == h.Name {
			return i
		}
	}
	return -1
}
