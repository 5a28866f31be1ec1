// Package report formats benchmark runs into comparison tables and
// machine-readable outputs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/weiihann/duelbench/harness"
)

// Format selects an output rendering.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatMarkdown, FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// Write renders run in the given format.
func Write(w io.Writer, f Format, run *harness.Run) error {
	switch f {
	case FormatMarkdown:
		return Generate(w, run)
	case FormatTable:
		return GenerateTable(w, run)
	case FormatJSON:
		return GenerateJSON(w, run)
	case FormatYAML:
		return GenerateYAML(w, run)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// Summary aggregates a run.
type Summary struct {
	CompiledWins    int
	InterpretedWins int
	Mismatches      []string
	// GeoMeanSpeedup is the geometric mean of all positive speedups,
	// or 0 when there are none.
	GeoMeanSpeedup float64
}

// Summarize counts wins per path and collects disagreeing benchmarks.
func Summarize(results []harness.Result) Summary {
	var (
		s        Summary
		speedups []float64
	)

	for _, r := range results {
		switch r.Winner {
		case harness.Compiled:
			s.CompiledWins++
		case harness.Interpreted:
			s.InterpretedWins++
		}

		if !r.Agree {
			s.Mismatches = append(s.Mismatches, r.Name)
		}

		if r.Speedup > 0 {
			speedups = append(speedups, r.Speedup)
		}
	}

	if len(speedups) > 0 {
		s.GeoMeanSpeedup = stat.GeometricMean(speedups, nil)
	}

	return s
}

// Generate writes a markdown comparison table for run.
func Generate(w io.Writer, run *harness.Run) error {
	if run == nil || len(run.Results) == 0 {
		return fmt.Errorf("no results to report")
	}

	summary := Summarize(run.Results)

	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run `%s`, seed %d\n", run.ID, run.Seed)
	fmt.Fprintln(w)

	if len(summary.Mismatches) == 0 {
		fmt.Fprintln(w, "Outputs: **all match**")
	} else {
		fmt.Fprintln(w, "Outputs: **MISMATCH**")

		for _, name := range summary.Mismatches {
			fmt.Fprintf(w, "  - %s\n", name)
		}
	}

	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Benchmark | Interpreted | Compiled | Speedup | Winner |")
	fmt.Fprintln(w, "|-----------|-------------|----------|---------|--------|")

	for _, r := range run.Results {
		fmt.Fprintf(w, "| %s | %s | %s | %.2fx | %s |\n",
			r.Name,
			formatDuration(r.InterpretedTime),
			formatDuration(r.CompiledTime),
			r.Speedup,
			r.Winner,
		)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Compiled wins: %d, interpreted wins: %d, geometric mean speedup: %.2fx\n",
		summary.CompiledWins,
		summary.InterpretedWins,
		summary.GeoMeanSpeedup,
	)

	return nil
}

type tableStyles struct {
	header   lipgloss.Style
	cell     lipgloss.Style
	compiled lipgloss.Style
	mismatch lipgloss.Style
	border   lipgloss.Style
}

func newTableStyles(w io.Writer) tableStyles {
	re := lipgloss.NewRenderer(w)
	cell := re.NewStyle().Padding(0, 1)

	return tableStyles{
		header:   re.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1),
		cell:     cell,
		compiled: cell.Foreground(lipgloss.Color("10")),
		mismatch: cell.Foreground(lipgloss.Color("9")),
		border:   re.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// GenerateTable writes a bordered terminal table for run. Colors are
// dropped automatically when w is not a terminal.
func GenerateTable(w io.Writer, run *harness.Run) error {
	if run == nil || len(run.Results) == 0 {
		return fmt.Errorf("no results to report")
	}

	st := newTableStyles(w)

	rows := make([][]string, 0, len(run.Results))
	for _, r := range run.Results {
		agree := "yes"
		if !r.Agree {
			agree = "NO"
		}

		rows = append(rows, []string{
			r.Name,
			formatDuration(r.InterpretedTime),
			formatDuration(r.CompiledTime),
			fmt.Sprintf("%.2fx", r.Speedup),
			string(r.Winner),
			agree,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.border).
		Headers("BENCHMARK", "INTERPRETED", "COMPILED", "SPEEDUP", "WINNER", "AGREE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return st.header
			case col == 4 && rows[row][4] == string(harness.Compiled):
				return st.compiled
			case col == 5 && rows[row][5] == "NO":
				return st.mismatch
			default:
				return st.cell
			}
		})

	summary := Summarize(run.Results)

	_, err := fmt.Fprintf(w, "%s\ncompiled %d / interpreted %d, geomean %.2fx\n",
		t.Render(),
		summary.CompiledWins,
		summary.InterpretedWins,
		summary.GeoMeanSpeedup,
	)

	return err
}

// GenerateJSON writes run as JSON to w.
func GenerateJSON(w io.Writer, run *harness.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(run)
}

// GenerateYAML writes run as YAML to w.
func GenerateYAML(w io.Writer, run *harness.Run) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(run); err != nil {
		return err
	}

	return enc.Close()
}

// Decode reads a run previously written by GenerateJSON.
func Decode(r io.Reader) (*harness.Run, error) {
	var run harness.Run
	if err := json.NewDecoder(r).Decode(&run); err != nil {
		return nil, fmt.Errorf("decode run: %w", err)
	}

	if len(run.Results) == 0 {
		return nil, fmt.Errorf("decode run: no results")
	}

	return &run, nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.2fµs", float64(d)/float64(time.Microsecond))
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
