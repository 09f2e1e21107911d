// Package cli implements the foodgram command line: the HTTP server and the
// one-shot maintenance commands that share its configuration.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mrlokans/foodgram/internal/audit"
	"github.com/mrlokans/foodgram/internal/config"
	"github.com/mrlokans/foodgram/internal/database"
	auditRepo "github.com/mrlokans/foodgram/internal/database/audit"
	"github.com/mrlokans/foodgram/internal/entrypoint"
	"github.com/mrlokans/foodgram/internal/logging"
)

const name = "foodgram"

// Loader returns the configuration a command runs with.
type Loader func() *config.Config

// runner carries what every subcommand needs.
type runner struct {
	version string
	load    Loader
	out     io.Writer
}

// New builds the root command. Without a subcommand it starts the server.
func New(version string, load Loader, out io.Writer) *cli.Command {
	if load == nil {
		load = config.NewConfig
	}
	if out == nil {
		out = os.Stdout
	}
	r := &runner{version: version, load: load, out: out}

	return &cli.Command{
		Name:    name,
		Usage:   "Recipe sharing backend",
		Version: version,
		Writer:  out,
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg := r.load()
			logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
			return ctx, nil
		},
		Action: r.serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: r.serve,
			},
			importIngredientsCmd(r),
			importTagsCmd(r),
			createAdminCmd(r),
		},
	}
}

// Execute runs the command line and exits non-zero on failure.
func Execute(version string) {
	if err := New(version, nil, nil).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (r *runner) serve(_ context.Context, _ *cli.Command) error {
	return entrypoint.Run(r.load(), r.version)
}

// openDatabase opens the configured database, creating and migrating it
// when missing.
func (r *runner) openDatabase() (*config.Config, *database.Database, error) {
	cfg := r.load()
	db, err := database.NewDatabase(cfg.Database.Path, cfg.Database.LogSQL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %q: %w", cfg.Database.Path, err)
	}
	return cfg, db, nil
}

// withAudit hands fn an audit service when auditing is enabled and waits
// for its writes before the caller closes db.
func withAudit(cfg *config.Config, db *database.Database, fn func(*audit.Service)) {
	if !cfg.Audit.Enabled {
		return
	}
	svc := audit.NewService(auditRepo.NewRepository(db.DB), cfg.Audit.Retention)
	fn(svc)
	svc.Wait()
}
