package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/experiment"
	"github.com/san-kum/numerix/internal/logging"
)

// app carries the settings shared by every command. Log level, log format,
// worker count and plotting come from flags or NUMERIX_* variables.
type app struct {
	v   *viper.Viper
	log *logrus.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: logging.Discard()}

	rootCmd := &cobra.Command{
		Use:          "numerix",
		Short:        "quadrature, minimization, fitting and property inversion",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(a.v.GetString("log-level"), a.v.GetString("log-format"))
			if err != nil {
				return err
			}
			log.SetOutput(cmd.ErrOrStderr())
			a.log = log
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.String("log-format", logging.FormatText, "log format (text, json)")
	pf.Int("workers", runtime.NumCPU(), "cases run concurrently by batch")
	pf.Bool("plot", false, "plot the result trace")
	for _, name := range []string{"log-level", "log-format", "workers", "plot"} {
		_ = a.v.BindPFlag(name, pf.Lookup(name))
	}
	a.v.SetEnvPrefix("NUMERIX")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	rootCmd.AddCommand(
		a.integrateCmd(),
		a.minimizeCmd(),
		a.findRootCmd(),
		a.fitCmd(),
		a.invertCmd(),
		a.runCmd(),
		a.batchCmd(),
		schemesCmd(),
		presetsCmd(),
	)
	return rootCmd
}

// caseFlags are the flags shared by the single-case commands.
type caseFlags struct {
	lower  []float64
	upper  []float64
	start  []float64
	params []string
	solver []string
	scheme string
	index  int
	save   string
}

func (f *caseFlags) register(cmd *cobra.Command, schemeUsage string) {
	fl := cmd.Flags()
	fl.Float64SliceVar(&f.lower, "lower", []float64{config.DefaultLower}, "lower bound per dimension")
	fl.Float64SliceVar(&f.upper, "upper", []float64{config.DefaultUpper}, "upper bound per dimension")
	fl.Float64SliceVar(&f.start, "start", nil, "starting point")
	fl.StringArrayVarP(&f.params, "param", "p", nil, "equation parameter key=value (repeatable)")
	fl.StringArrayVarP(&f.solver, "set", "s", nil, "solver setting key=value (repeatable)")
	fl.IntVar(&f.index, "index", 0, "evaluation context index")
	fl.StringVar(&f.save, "save", "", "also write the case to a yaml or toml file")
	if schemeUsage != "" {
		fl.StringVar(&f.scheme, "scheme", "", schemeUsage)
	}
}

func (f *caseFlags) build(kind config.Kind, function, schemeKey string) (*config.Case, error) {
	params, err := parseAssignments(f.params)
	if err != nil {
		return nil, err
	}
	solver, err := parseAssignments(f.solver)
	if err != nil {
		return nil, err
	}
	if f.scheme != "" && schemeKey != "" {
		solver[schemeKey] = f.scheme
	}
	return &config.Case{
		Name:     function,
		Kind:     kind,
		Function: function,
		Params:   params,
		Solver:   solver,
		Lower:    f.lower,
		Upper:    f.upper,
		Start:    f.start,
		Index:    f.index,
	}, nil
}

// execute runs one case and prints its report.
func (a *app) execute(cmd *cobra.Command, c *config.Case, save string) error {
	if save != "" {
		if err := config.SaveCase(save, c); err != nil {
			return err
		}
		a.log.WithField("path", save).Info("case saved")
	}

	e := experiment.New(c)
	e.SetLogger(a.log)
	res, err := e.Run(cmd.Context())
	if err != nil {
		return err
	}
	return a.report(cmd.OutOrStdout(), res)
}

func (a *app) integrateCmd() *cobra.Command {
	var f caseFlags
	cmd := &cobra.Command{
		Use:   "integrate [function]",
		Short: "integrate a library function over an interval or box",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.build(config.KindIntegrate, args[0], "integrator")
			if err != nil {
				return err
			}
			return a.execute(cmd, c, f.save)
		},
	}
	f.register(cmd, "quadrature scheme")
	return cmd
}

func (a *app) minimizeCmd() *cobra.Command {
	var f caseFlags
	cmd := &cobra.Command{
		Use:   "minimize [function]",
		Short: "minimize a library function inside bounds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.build(config.KindMinimize, args[0], "minimizationScheme")
			if err != nil {
				return err
			}
			return a.execute(cmd, c, f.save)
		},
	}
	f.register(cmd, "minimization scheme")
	return cmd
}

func (a *app) findRootCmd() *cobra.Command {
	var f caseFlags
	cmd := &cobra.Command{
		Use:   "root [function]",
		Short: "find a sign change of a scalar function by bisection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.build(config.KindRoot, args[0], "")
			if err != nil {
				return err
			}
			return a.execute(cmd, c, f.save)
		},
	}
	f.register(cmd, "")
	return cmd
}

func (a *app) fitCmd() *cobra.Command {
	var (
		f        caseFlags
		data     string
		weighted bool
	)
	cmd := &cobra.Command{
		Use:   "fit [model]",
		Short: "least-squares fit of a coefficient model to csv data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.build(config.KindFit, args[0], "")
			if err != nil {
				return err
			}
			samples, lower, upper, err := readSamples(data, weighted)
			if err != nil {
				return err
			}
			c.Data = samples
			if !cmd.Flags().Changed("lower") {
				c.Lower = lower
			}
			if !cmd.Flags().Changed("upper") {
				c.Upper = upper
			}
			return a.execute(cmd, c, f.save)
		},
	}
	f.register(cmd, "")
	cmd.Flags().StringVar(&data, "data", "", "csv file with columns x1..xn,y")
	cmd.Flags().BoolVar(&weighted, "weighted", false, "the last csv column holds weights")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func (a *app) invertCmd() *cobra.Command {
	var (
		f        caseFlags
		target   float64
		rho      float64
		property string
	)
	cmd := &cobra.Command{
		Use:   "invert [model]",
		Short: "solve a caloric model for the temperature matching e or h",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.build(config.KindInvert, args[0], "")
			if err != nil {
				return err
			}
			c.Lower, c.Upper = nil, nil
			c.Target = target
			c.Rho = rho
			c.Solver["property"] = property
			return a.execute(cmd, c, f.save)
		},
	}
	f.register(cmd, "")
	cmd.Flags().Float64Var(&target, "target", 0, "target property value")
	cmd.Flags().Float64Var(&rho, "rho", 1, "density")
	cmd.Flags().StringVar(&property, "property", "e", "property to match (e, h)")
	return cmd
}

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [case-file | kind/preset]",
		Short: "run a case file or a built-in preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveCase(args[0])
			if err != nil {
				return err
			}
			return a.execute(cmd, c, "")
		},
	}
}

func (a *app) batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [case-file | kind/preset]...",
		Short: "run several cases concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cases := make([]*config.Case, len(args))
			for i, arg := range args {
				c, err := resolveCase(arg)
				if err != nil {
					return err
				}
				cases[i] = c
			}

			b := experiment.NewBatch(cases, a.v.GetInt("workers"))
			b.SetLogger(a.log)
			results, err := b.Run(cmd.Context())
			if err != nil {
				return err
			}
			return summary(cmd.OutOrStdout(), results)
		},
	}
}

// resolveCase accepts kind/name for a preset, otherwise a case file path.
func resolveCase(arg string) (*config.Case, error) {
	if kind, name, ok := strings.Cut(arg, "/"); ok {
		if c := config.GetPreset(config.Kind(kind), name); c != nil {
			return c, nil
		}
	}
	c, err := config.LoadCase(arg)
	if err != nil {
		return nil, fmt.Errorf("%s is neither a preset nor a readable case file: %w", arg, err)
	}
	return c, nil
}
