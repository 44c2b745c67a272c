package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/caplet/pkg/basis"
	"github.com/chazu/caplet/pkg/config"
	"github.com/chazu/caplet/pkg/diag"
	"github.com/chazu/caplet/pkg/engine"
	"github.com/chazu/caplet/pkg/extract"
	"github.com/chazu/caplet/pkg/geofile"
	"github.com/chazu/caplet/pkg/kernel/sdfx"
	"github.com/chazu/caplet/pkg/layout"
	"github.com/chazu/caplet/pkg/panel"
	"github.com/chazu/caplet/pkg/tessellate"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// runOptions are the command line settings that are not part of
// config.Config.
type runOptions struct {
	configPath   string
	size         float64
	output       string
	stl          string
	script       bool
	supportsOnly bool
	verbose      bool
}

func makeCapletGeoCommand() *cobra.Command {
	var opts runOptions
	flagCfg := config.Default()

	cmd := &cobra.Command{
		Use:   "capletgeo <layout> (flags)",
		Short: "Construct basis functions of the specified type from a Manhattan layout.",
		Long: `Construct basis functions of the specified type from a Manhattan layout.

The layout is a .geo file, or a layout script when it ends in .zy or --script
is given. The output is written next to the input unless --output is set:

    layout.qui     for piecewise constant basis functions (--type pwc)
    layout.caplet  for instantiable basis functions (--type ins)

Flags override values read from --config.
`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts, flagCfg, cmd.Flags())
			if err != nil {
				return err
			}
			installLogger(cmd.ErrOrStderr(), opts.verbose)
			return run(cmd.Context(), cfg, opts, args[0], cmd.OutOrStdout())
		},
	}

	addFlags(cmd.Flags(), &flagCfg, &opts)
	return cmd
}

func addFlags(f *pflag.FlagSet, cfg *config.Config, opts *runOptions) {
	f.StringVar(&cfg.Type, "type", cfg.Type, "basis function type: pwc or ins")
	f.StringVar(&cfg.Unit, "unit", cfg.Unit, "layout grid unit: n, u, m or 1 (meter)")
	f.Float64Var(&opts.size, "size", 0,
		"pwc panel size or ins arch length in layout units (default 50 for pwc, 300 for ins; "+
			"ins 0 disables arches, ins <0 disables basis generation)")
	f.Float64Var(&cfg.ProjectionDistance, "projection-distance", cfg.ProjectionDistance,
		"largest gap in meters across which a facing panel is projected")
	f.Float64Var(&cfg.MergeDistance, "merge-distance", cfg.MergeDistance,
		"largest distance difference in meters for merging projections")
	f.Float64Var(&cfg.CoincidentMargin, "margin", cfg.CoincidentMargin,
		"coincidence margin as a fraction of the support extent")
	f.StringVar(&cfg.ArchSource, "arch-source", cfg.ArchSource,
		"arches grow from projections, the default, or from the plain flat panels with supports")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent buckets (0: no limit)")
	f.DurationVar(&cfg.EvalTimeout, "eval-timeout", cfg.EvalTimeout, "layout script evaluation limit")
	f.StringVar(&opts.configPath, "config", "", "YAML or TOML configuration file")
	f.StringVarP(&opts.output, "output", "o", "", `output file ("-" for stdout)`)
	f.StringVar(&opts.stl, "stl", "", "also write the panels as an STL mesh in layout units")
	f.BoolVar(&opts.supportsOnly, "stl-supports-only", false, "leave projections and arches out of the STL mesh")
	f.BoolVar(&opts.script, "script", false, "treat the input as a layout script")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline stages")
}

// resolveConfig loads the --config file (if any) and applies every flag
// the user set.
func resolveConfig(opts runOptions, flagCfg config.Config, flags *pflag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return cfg, err
		}
	}
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "type":
			cfg.Type = flagCfg.Type
		case "unit":
			cfg.Unit = flagCfg.Unit
		case "size":
			cfg.SetSize(opts.size)
		case "projection-distance":
			cfg.ProjectionDistance = flagCfg.ProjectionDistance
		case "merge-distance":
			cfg.MergeDistance = flagCfg.MergeDistance
		case "margin":
			cfg.CoincidentMargin = flagCfg.CoincidentMargin
		case "arch-source":
			cfg.ArchSource = flagCfg.ArchSource
		case "workers":
			cfg.Workers = flagCfg.Workers
		case "eval-timeout":
			cfg.EvalTimeout = flagCfg.EvalTimeout
		}
	})
	return cfg, cfg.Validate()
}

func installLogger(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	diag.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func loader(cfg config.Config, opts runOptions, input string) (layout.Loader, error) {
	if !opts.script && !strings.EqualFold(filepath.Ext(input), ".zy") {
		return &geofile.Reader{Path: input}, nil
	}
	src, err := os.ReadFile(input)
	if err != nil {
		return nil, errors.Wrapf(err, "reading script %s", input)
	}
	eng := engine.NewEngine()
	if cfg.EvalTimeout > 0 {
		eng.Timeout = cfg.EvalTimeout
	}
	return &engine.ScriptLoader{Engine: eng, Source: string(src)}, nil
}

// outputPath replaces the input extension with the one of the request type.
func outputPath(input, typ string) string {
	ext := ".caplet"
	if typ == config.TypePWC {
		ext = ".qui"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

func run(ctx context.Context, cfg config.Config, opts runOptions, input string, stdout io.Writer) error {
	unit, err := config.UnitScale(cfg.Unit)
	if err != nil {
		return err
	}
	ld, err := loader(cfg, opts, input)
	if err != nil {
		return err
	}
	ex, err := extract.Load(ctx, ld)
	if err != nil {
		return err
	}
	ex.Workers = cfg.Workers

	var (
		res    *extract.Result
		writer panel.Writer
	)
	switch cfg.Type {
	case config.TypePWC:
		writer = geofile.FastcapWriter{}
		res, err = ex.PWC(ctx, unit, cfg.EffectiveSize()*unit)
	default:
		writer = geofile.CapletWriter{}
		var p basis.Params
		if p, err = cfg.BasisParams(unit); err == nil {
			res, err = ex.Instantiable(ctx, unit, p)
		}
	}
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	out := opts.output
	if out == "" {
		out = outputPath(input, cfg.Type)
	}
	if err := writeOutput(out, stdout, func(w io.Writer) error {
		return writer.Write(w, name, res.Conductors)
	}); err != nil {
		return err
	}

	if opts.stl != "" {
		meshes := tessellate.Tessellate(res.Conductors, tessellate.Options{
			Scale:        1 / unit,
			SupportsOnly: opts.supportsOnly,
		})
		if err := (sdfx.STLExporter{}).Export(opts.stl, meshes); err != nil {
			return err
		}
	}

	if out != "-" {
		fmt.Fprintf(stdout, "capletgeo: %d conductors, %d panels, %d warnings (%s)\n",
			len(res.Conductors), panel.TotalSize(res.Conductors), ex.LoadReport().Len()+res.Report.Len(), out)
	}
	return nil
}

func writeOutput(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}
