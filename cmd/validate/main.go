// Command validate checks the case and centroid datasets before they are
// served: required columns, unique centroid keys, centroid coordinates, and
// state names. It exits non-zero when any check fails.
//
// Usage:
//
//	go run ./cmd/validate --data-dir data
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/couchcryptid/birdflu-tracker/internal/adapter/storage"
	"github.com/couchcryptid/birdflu-tracker/internal/config"
	"github.com/couchcryptid/birdflu-tracker/internal/dataset"
)

func main() {
	_ = godotenv.Load()
	os.Exit(execute(os.Args, os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := 0
	app := &cli.App{
		Name:  "validate",
		Usage: "check the HPAI case and county centroid datasets",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data-dir", Usage: "directory holding the CSV files (overrides DATA_DIR)"},
			&cli.StringFlag{Name: "cases", Usage: "case file name (overrides CASES_FILE)"},
			&cli.StringFlag{Name: "centroids", Usage: "centroid file name (overrides CENTROIDS_FILE)"},
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
			store, err := storage.FromConfig(cfg)
			if err != nil {
				return err
			}
			code = run(c.Context, dataset.NewLoader(store, cfg.CasesFile, cfg.CentroidsFile), stdout)
			return nil
		},
	}
	app.Writer = stdout
	app.ErrWriter = stderr
	if err := app.RunContext(ctx, args); err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}
	return code
}

// datasetLoader is satisfied by *dataset.Loader.
type datasetLoader interface {
	Load(ctx context.Context) (*dataset.Datasets, error)
}

var _ datasetLoader = (*dataset.Loader)(nil)

func run(ctx context.Context, loader datasetLoader, w io.Writer) int {
	fmt.Fprintln(w, "=== HPAI Dataset Validation ===")
	fmt.Fprintln(w)

	ds, err := loader.Load(ctx)
	columns := validateColumns(err)
	if err != nil && columns.passed() {
		fmt.Fprintf(w, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{columns}
	if ds != nil {
		phases = append(phases,
			validateUniqueKeys(ds),
			validateCoordinates(ds),
			validateStateNames(ds),
		)
	}

	return report(w, phases, ds)
}
