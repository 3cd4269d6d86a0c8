package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ritzau/shadergraph/pkg/config"
	"github.com/ritzau/shadergraph/pkg/graph"
	"github.com/ritzau/shadergraph/pkg/logging"
	"github.com/ritzau/shadergraph/pkg/output"
	"github.com/ritzau/shadergraph/pkg/recipe"
	"github.com/ritzau/shadergraph/pkg/rewrite"
	"github.com/ritzau/shadergraph/pkg/samples"
	"github.com/ritzau/shadergraph/pkg/shader"
)

const usage = `Usage: shadergraph [flags] <command> [args]

Commands:
  convert [sample...]  convert built-in sample materials (all by default)
  samples              list the built-in samples
  recipes              print the conversion recipes for the host version
  renames              print the socket rename table

Flags:
`

func main() {
	// Parse command-line flags; names match the config keys
	flags := pflag.NewFlagSet("shadergraph", pflag.ExitOnError)
	flags.String("version", shader.DefaultVersion.String(), "Host version the recipes target")
	flags.Int("workers", 4, "Materials converted in parallel")
	flags.Int("max_nodes", 10000, "Abort a conversion when a tree grows past this many nodes (0 disables)")
	flags.Duration("timeout", 0, "Deadline for the whole batch (0 uses the config value)")
	flags.String("format", "text", "Report format: text or yaml")
	flags.Bool("layout", true, "Place created nodes next to their consumers")
	flags.String("verbosity", "", "Log level: debug, info, warn or error")
	flags.CountP("verbose", "v", "Increase log verbosity (repeatable)")
	flags.Bool("json_logs", false, "Log as JSON")
	configPath := flags.String("config", config.DefaultFile, "Config file")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.LoadFile(flags, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	setupLogging(cfg)

	args := flags.Args()
	command := "convert"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "convert":
		err = runConvert(cfg, args)
	case "samples":
		for _, s := range samples.All() {
			fmt.Printf("%-20s %s\n", s.Name, s.Description)
		}
	case "recipes":
		err = runRecipes(cfg)
	case "renames":
		if cfg.Format == "yaml" {
			err = output.WriteRenames(os.Stdout, shader.Renames())
		} else {
			output.PrintRenames(os.Stdout, shader.Renames())
		}
	default:
		flags.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Verbosity) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	// -v and -vv override the named level
	switch {
	case cfg.VerboseCnt >= 2:
		level = slog.LevelDebug - 4
	case cfg.VerboseCnt == 1:
		level = slog.LevelDebug
	}
	if cfg.JSONLogs {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}
}

func newConverter(cfg *config.Config) (*rewrite.Converter, shader.Catalog, error) {
	v, err := cfg.HostVersion()
	if err != nil {
		return nil, nil, err
	}
	catalog := shader.NewCatalog(v)
	table := recipe.NewTable(catalog)
	return rewrite.New(table, rewrite.Options{MaxNodes: cfg.MaxNodes}), catalog, nil
}

func runConvert(cfg *config.Config, names []string) error {
	conv, catalog, err := newConverter(cfg)
	if err != nil {
		return err
	}

	var selected []samples.Sample
	if len(names) == 0 {
		selected = samples.All()
	}
	for _, name := range names {
		s, ok := samples.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown sample %q (see 'shadergraph samples')", name)
		}
		selected = append(selected, s)
	}

	var opts []graph.Option
	if cfg.Layout {
		opts = append(opts, graph.WithLayout(graph.PlaceLeftOf))
	}
	jobs := make([]rewrite.Job, 0, len(selected))
	for _, s := range selected {
		m, err := s.Build(catalog, opts...)
		if err != nil {
			return err
		}
		jobs = append(jobs, rewrite.Job{Name: s.Name, Tree: m.Tree, Surface: m.Surface})
	}

	ctx := context.Background()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	logging.InfoContext(ctx, "converting materials", "count", len(jobs), "workers", cfg.Workers, "version", catalog.Version().String())
	results, batchErr := conv.ConvertAll(ctx, jobs, cfg.Workers)

	conversions := make([]output.Conversion, len(results))
	for i, res := range results {
		conversions[i] = output.Conversion{Name: res.Job.Name, Node: res.Node, Report: res.Report, Err: res.Err}
	}

	if cfg.Format == "yaml" {
		if err := output.WriteConversions(os.Stdout, conversions); err != nil {
			return err
		}
	} else {
		for _, c := range conversions {
			output.PrintConversion(os.Stdout, c)
			fmt.Println()
		}
		output.PrintSummary(os.Stdout, conversions)
	}
	return batchErr
}

func runRecipes(cfg *config.Config) error {
	conv, _, err := newConverter(cfg)
	if err != nil {
		return err
	}
	if cfg.Format == "yaml" {
		return output.WriteYAML(os.Stdout, output.NewRecipeDocs(conv.Table()))
	}
	output.PrintRecipes(os.Stdout, conv.Table())
	return nil
}
