// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/catctl/catctl/internal/attrs"
	"github.com/catctl/catctl/internal/config"
	"github.com/catctl/catctl/internal/filters"
	"github.com/catctl/catctl/internal/log"
)

// Formats lists the values accepted by --output.
var Formats = []string{"text", "json", "yaml", "raw"}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value any, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	switch value := value.(type) {
	case nil:
		return emptyValue[0]
	case bool:
		return strconv.FormatBool(value)
	case json.Number:
		return value.String()
	case string:
		if value == "" {
			return emptyValue[0]
		}
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}

	if reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(jsonBytes)
}

// SliceDiceSpit filters, transforms, sorts and renders a JSON array of rows
// according to the command's --filter, --sort and --output flags. The
// optional postProcess callback runs on the filtered dataset before text
// rendering.
func SliceDiceSpit(raw []byte,
	attrs attrs.AttrList,
	cmd *cli.Command,
	w io.Writer,
	postProcess func([]map[string]any) error) error {

	if w == nil {
		w = os.Stdout
	}

	format := cmd.String("output")
	if format == "raw" {
		_, err := w.Write(raw)
		return err
	}

	dataset := filters.FilterDataset(gjson.ParseBytes(raw), attrs, cmd.String("filter"))

	if cmd.Bool("local") {
		for a := range attrs {
			attrs[a].TransformSpec += "t"
		}
	}

	for _, row := range dataset {
		for _, attr := range attrs {
			if attr.TransformSpec != "" {
				row[attr.OutputKey] = attr.Transform(row[attr.OutputKey])
			}
		}
	}

	SortDataset(dataset, cmd.String("sort"))

	switch format {
	case "json":
		out, err := MarshalJSON(dataset, attrs)
		if err != nil {
			return fmt.Errorf("failed to render json: %w", err)
		}
		_, err = w.Write(append(out, '\n'))
		return err
	case "yaml":
		out, err := yaml.Marshal(yamlRows(dataset, attrs))
		if err != nil {
			return fmt.Errorf("failed to render yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		if postProcess != nil {
			if err := postProcess(dataset); err != nil {
				log.Errorf("post process: %v", err)
			}
		}
		TableWriter(dataset, attrs, cmd, w)
	}

	return nil
}

// MarshalJSON renders rows as a JSON array whose objects keep attr order.
func MarshalJSON(dataset []map[string]any, attrs attrs.AttrList) ([]byte, error) {
	visible := attrs.Visible()

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range dataset {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, attr := range visible {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := encodeJSON(&buf, attr.OutputKey); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := encodeJSON(&buf, row[attr.OutputKey]); err != nil {
				return nil, fmt.Errorf("%s: %w", attr.OutputKey, err)
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func encodeJSON(buf *bytes.Buffer, v any) error {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(b.Bytes(), "\n"))
	return nil
}

// yamlRows keeps attr order with yaml.MapSlice. Integral numbers are emitted
// as ints, other decimals keep their text.
func yamlRows(dataset []map[string]any, attrs attrs.AttrList) []yaml.MapSlice {
	visible := attrs.Visible()
	out := make([]yaml.MapSlice, 0, len(dataset))
	for _, row := range dataset {
		ms := make(yaml.MapSlice, 0, len(visible))
		for _, attr := range visible {
			v := row[attr.OutputKey]
			if n, ok := v.(json.Number); ok {
				if i, err := n.Int64(); err == nil {
					v = i
				} else {
					v = n.String()
				}
			}
			ms = append(ms, yaml.MapItem{Key: attr.OutputKey, Value: v})
		}
		out = append(out, ms)
	}
	return out
}

// TableWriter renders the result set in a tabular form honoring color,
// titles and padding options. If w is nil, os.Stdout is used.
func TableWriter(
	resultSet []map[string]any,
	attrs attrs.AttrList,
	cmd *cli.Command,
	w io.Writer) {

	if w == nil {
		w = os.Stdout
	}

	if len(resultSet) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left).Bold(true)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if cmd.Bool("color") {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(headerColor)
		evenRowStyle = evenRowStyle.Foreground(evenColor)
		oddRowStyle = oddRowStyle.Foreground(oddColor)
	}

	visible := attrs.Visible()

	rows := make([][]string, 0, len(resultSet))
	for _, result := range resultSet {
		row := make([]string, 0, len(visible))
		for _, attr := range visible {
			row = append(row, InterfaceToString(result[attr.OutputKey], "-"))
		}
		rows = append(rows, row)
	}

	if h, ok := cmd.Metadata["header"].(string); ok {
		fmt.Fprintln(w, headerStyle.Render(h))
	}

	pad := cmd.Int("padding")
	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if cmd.Bool("titles") {
		headers := make([]string, 0, len(visible))
		for _, attr := range visible {
			headers = append(headers, attr.OutputKey)
		}

		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)

	if f, ok := cmd.Metadata["footer"].(string); ok {
		fmt.Fprintln(w, headerStyle.Render(f))
	}
}

// getColors returns configured colors for table rendering, defaulting to
// values readable on the terminal's background.
func getColors(key string) (header, even, odd color.Color) {
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

	resolveColor := func(key string, light string, dark string) color.Color {
		if colorCfg, err := config.GetString(key); err == nil && colorCfg != "" {
			return lipgloss.Color(colorCfg)
		}

		if isDark {
			return lipgloss.Color(dark)
		}
		return lipgloss.Color(light)
	}

	header = resolveColor(key+".title", "#b08800", "#f6be00")
	even = resolveColor(key+".even", "#333333", "#ffffff")
	odd = resolveColor(key+".odd", "#0088a0", "#00c8f0")

	return
}
