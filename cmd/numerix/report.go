package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/experiment"
	"github.com/san-kum/numerix/internal/integrators"
	"github.com/san-kum/numerix/internal/optim"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

func (a *app) report(out io.Writer, res *experiment.Result) error {
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s %s", res.Kind, res.Case)))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", valueLabel(res.Kind), formatFloats(res.Value))
	if label := objectiveLabel(res.Kind); label != "" {
		fmt.Fprintf(w, "%s\t%s\n", label, strconv.FormatFloat(res.Objective, 'g', 12, 64))
	}
	if res.Evaluations > 0 {
		fmt.Fprintf(w, "evaluations\t%d\n", res.Evaluations)
	}
	fmt.Fprintf(w, "steps\t%d\n", res.Steps)
	outcome := res.Outcome
	if !res.Converged {
		outcome = warnStyle.Render(outcome)
	}
	fmt.Fprintf(w, "outcome\t%s\n", outcome)
	fmt.Fprintf(w, "elapsed\t%s\n", dimStyle.Render(res.Elapsed.Round(time.Microsecond).String()))
	if err := w.Flush(); err != nil {
		return err
	}

	if a.v.GetBool("plot") && len(res.Trace) > 1 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(res.Trace,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(traceCaption(res.Kind)),
		))
	}
	return nil
}

func summary(out io.Writer, results []*experiment.Result) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tKIND\tVALUE\tOBJECTIVE\tEVALS\tOUTCOME\tELAPSED")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.6g\t%d\t%s\t%v\n",
			r.Case, r.Kind, formatFloats(r.Value), r.Objective, r.Evaluations, r.Outcome,
			r.Elapsed.Round(time.Microsecond))
	}
	return w.Flush()
}

func valueLabel(k config.Kind) string {
	switch k {
	case config.KindIntegrate:
		return "integral"
	case config.KindMinimize:
		return "minimizer"
	case config.KindFit:
		return "coefficients"
	case config.KindInvert:
		return "T"
	}
	return string(k)
}

func objectiveLabel(k config.Kind) string {
	switch k {
	case config.KindMinimize, config.KindRoot:
		return "f(x)"
	case config.KindFit:
		return "R2"
	case config.KindInvert:
		return "residual"
	}
	return ""
}

func traceCaption(k config.Kind) string {
	switch k {
	case config.KindIntegrate:
		return "integrand"
	case config.KindFit:
		return "residuals"
	}
	return "bracket width per step"
}

func formatFloats(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', 12, 64)
	}
	return strings.Join(parts, ", ")
}

func schemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemes",
		Short: "list registered schemes, functions and models",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			section := func(title string, names []string) {
				fmt.Fprintln(out, titleStyle.Render(title))
				for _, n := range names {
					fmt.Fprintf(out, "  %s\n", n)
				}
				fmt.Fprintln(out)
			}
			section("integrators", integrators.Schemes.Names())
			section("univariate minimizers", optim.UnivariateSchemes.Names())
			section("multivariate minimizers", optim.MultivariateSchemes.Names())
			for _, k := range config.Kinds {
				section(string(k)+" functions", experiment.Functions(k))
			}
			return nil
		},
	}
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [kind]",
		Short: "list built-in cases",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			kinds := config.Kinds
			if len(args) == 1 {
				kinds = []config.Kind{config.Kind(args[0])}
			}
			for _, k := range kinds {
				presets := config.ListPresets(k)
				if len(presets) == 0 {
					fmt.Fprintf(out, "no presets for kind: %s\n", k)
					continue
				}
				fmt.Fprintf(out, "presets for %s:\n", k)
				for _, p := range presets {
					c := config.GetPreset(k, p)
					fmt.Fprintf(out, "  %s/%s\t%s\n", k, p, dimStyle.Render(c.Function))
				}
			}
			return nil
		},
	}
}

// parseAssignments turns key=value pairs into dictionary entries. Values
// are read as numbers, comma separated number lists, booleans or strings.
func parseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		out[key] = parseValue(value)
	}
	return out, nil
}

func parseValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if strings.Contains(s, ",") {
		fields := strings.Split(s, ",")
		list := make([]any, 0, len(fields))
		for _, field := range fields {
			f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return s
			}
			list = append(list, f)
		}
		return list
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// readSamples loads x1..xn,y[,w] rows and the bounding box of the x columns.
func readSamples(path string, weighted bool) (*config.Samples, []float64, []float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.Comment = '#'
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}

	extra := 1
	if weighted {
		extra = 2
	}
	s := &config.Samples{}
	var lower, upper []float64
	for i, row := range rows {
		if len(row) <= extra {
			return nil, nil, nil, fmt.Errorf("%s:%d: need at least %d columns", path, i+1, extra+1)
		}
		vals := make([]float64, len(row))
		for j, field := range row {
			if vals[j], err = strconv.ParseFloat(strings.TrimSpace(field), 64); err != nil {
				return nil, nil, nil, fmt.Errorf("%s:%d: %w", path, i+1, err)
			}
		}

		n := len(row) - extra
		x := vals[:n]
		if lower == nil {
			lower = append([]float64(nil), x...)
			upper = append([]float64(nil), x...)
		} else if len(x) != len(lower) {
			return nil, nil, nil, fmt.Errorf("%s:%d: %d x columns, want %d", path, i+1, len(x), len(lower))
		}
		for j := range x {
			lower[j] = math.Min(lower[j], x[j])
			upper[j] = math.Max(upper[j], x[j])
		}

		s.X = append(s.X, x)
		s.Y = append(s.Y, vals[n])
		if weighted {
			s.W = append(s.W, vals[n+1])
		}
	}
	if len(s.Y) == 0 {
		return nil, nil, nil, fmt.Errorf("%s: no samples", path)
	}
	return s, lower, upper, nil
}
