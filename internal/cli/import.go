package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mrlokans/foodgram/internal/audit"
	"github.com/mrlokans/foodgram/internal/database/ingredients"
	"github.com/mrlokans/foodgram/internal/database/tags"
	"github.com/mrlokans/foodgram/internal/importers"
)

// importFlags are built per command: flags keep parsed state.
func importFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Aliases:  []string{"f"},
			Usage:    "Path to the file to import",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "File format (json, csv, yaml); detected from the extension when empty",
		},
	}
}

func importIngredientsCmd(r *runner) *cli.Command {
	return &cli.Command{
		Name:  "import-ingredients",
		Usage: "Load ingredients from a JSON, CSV or YAML file",
		Description: `Each row needs a name and a measurement unit. CSV files hold
"name,measurement_unit" rows with an optional header. Rows already
stored are skipped.`,
		Flags: importFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("file")
			format, err := resolveFormat(path, cmd.String("format"))
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %q: %w", path, err)
			}
			defer f.Close()

			rows, problems, err := importers.ParseIngredients(f, format)
			if err != nil {
				return fmt.Errorf("failed to parse %q: %w", path, err)
			}

			cfg, db, err := r.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			pipeline := importers.NewPipeline(ingredients.NewRepository(db.DB), nil)
			result, err := pipeline.ImportIngredients(ctx, rows)
			withAudit(cfg, db, func(log *audit.Service) {
				log.LogImport(ctx, "ingredients", result.Imported, result.Skipped, err)
			})
			if err != nil {
				return err
			}
			r.report("ingredients", result, problems)
			return nil
		},
	}
}

func importTagsCmd(r *runner) *cli.Command {
	return &cli.Command{
		Name:  "import-tags",
		Usage: "Load tags from a JSON or YAML file",
		Flags: importFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("file")
			format, err := resolveFormat(path, cmd.String("format"))
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %q: %w", path, err)
			}
			defer f.Close()

			rows, problems, err := importers.ParseTags(f, format)
			if err != nil {
				return fmt.Errorf("failed to parse %q: %w", path, err)
			}

			cfg, db, err := r.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			pipeline := importers.NewPipeline(nil, tags.NewRepository(db.DB))
			result, err := pipeline.ImportTags(ctx, rows)
			withAudit(cfg, db, func(log *audit.Service) {
				log.LogImport(ctx, "tags", result.Imported, result.Skipped, err)
			})
			if err != nil {
				return err
			}
			r.report("tags", result, problems)
			return nil
		},
	}
}

func resolveFormat(path, explicit string) (importers.Format, error) {
	if explicit == "" {
		return importers.FormatFromPath(path)
	}
	format := importers.Format(explicit)
	switch format {
	case importers.FormatJSON, importers.FormatCSV, importers.FormatYAML:
		return format, nil
	}
	return "", fmt.Errorf("%w: %q", importers.ErrUnsupportedFormat, explicit)
}

func (r *runner) report(kind string, result importers.Result, problems []string) {
	fmt.Fprintf(r.out, "%s: read %d, imported %d, skipped %d\n",
		kind, result.Read, result.Imported, result.Skipped)
	for _, p := range problems {
		fmt.Fprintf(r.out, "  skipped row: %s\n", p)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(r.out, "  failed: %s\n", e)
	}
}
