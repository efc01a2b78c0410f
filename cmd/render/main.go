// Command render loads the datasets once, prints the missing-centroid report,
// and writes the clustered case map to a standalone HTML file.
//
// Usage:
//
//	go run ./cmd/render --data-dir data --out birdflu_map.html --format text
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/couchcryptid/birdflu-tracker/internal/adapter/storage"
	"github.com/couchcryptid/birdflu-tracker/internal/config"
	"github.com/couchcryptid/birdflu-tracker/internal/dataset"
	"github.com/couchcryptid/birdflu-tracker/internal/domain"
	"github.com/couchcryptid/birdflu-tracker/internal/observability"
	"github.com/couchcryptid/birdflu-tracker/internal/pipeline"
	"github.com/couchcryptid/birdflu-tracker/internal/present"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:      "render",
		Usage:     "render the HPAI case map and missing-centroid report",
		Writer:    stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data-dir", Usage: "directory holding the CSV files (overrides DATA_DIR)"},
			&cli.StringFlag{Name: "cases", Usage: "case file name (overrides CASES_FILE)"},
			&cli.StringFlag{Name: "centroids", Usage: "centroid file name (overrides CENTROIDS_FILE)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "birdflu_map.html", Usage: "HTML output path, empty to skip"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: formatText, Usage: "report format: text, json, or yaml"},
			&cli.BoolFlag{Name: "dashboard", Usage: "include metric widgets and the missing-coordinates table"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if v := c.String("data-dir"); v != "" {
				cfg.DataSource = config.SourceFile
				cfg.DataDir = v
			}
			if v := c.String("cases"); v != "" {
				cfg.CasesFile = v
			}
			if v := c.String("centroids"); v != "" {
				cfg.CentroidsFile = v
			}
			return run(c.Context, cfg, options{
				out:       c.String("out"),
				format:    c.String("format"),
				dashboard: c.Bool("dashboard"),
			}, c.App.Writer)
		},
	}
}

type options struct {
	out       string
	format    string
	dashboard bool
}

func run(ctx context.Context, cfg *config.Config, opts options, stdout io.Writer) error {
	if !validFormat(opts.format) {
		return fmt.Errorf("unknown format %q: want text, json, or yaml", opts.format)
	}

	// The report owns stdout; logs go to stderr so json and yaml stay parseable.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store, err := storage.FromConfig(cfg)
	if err != nil {
		return err
	}
	loader := dataset.NewLoader(store, cfg.CasesFile, cfg.CentroidsFile)
	p := pipeline.New(loader, domain.NewNormalizer(domain.USStateCodes()), logger, observability.NewUnregisteredMetrics(), pipeline.Options{})

	result, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("%s (%w)", present.UserMessage(err), err)
	}

	if err := writeReport(stdout, opts.format, result); err != nil {
		return err
	}
	if opts.out == "" {
		return nil
	}
	return writeMap(opts.out, result, opts.dashboard)
}

func writeMap(path string, result *domain.Result, dashboard bool) error {
	renderer, err := present.NewRenderer()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if dashboard {
		err = renderer.RenderDashboard(f, result)
	} else {
		err = renderer.RenderMap(f, result)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
