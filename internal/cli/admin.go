package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/mrlokans/foodgram/internal/audit"
	"github.com/mrlokans/foodgram/internal/auth"
	"github.com/mrlokans/foodgram/internal/entities"
)

func createAdminCmd(r *runner) *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "Create an administrator account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true, Usage: "Login email"},
			&cli.StringFlag{Name: "username", Required: true, Usage: "Public username"},
			&cli.StringFlag{Name: "password", Required: true, Usage: "Initial password"},
			&cli.StringFlag{Name: "first-name", Value: "Admin", Usage: "First name"},
			&cli.StringFlag{Name: "last-name", Value: "Admin", Usage: "Last name"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, db, err := r.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := auth.NewService(db.DB, cfg.Auth).CreateUser(ctx, auth.NewUser{
				Email:     cmd.String("email"),
				Username:  cmd.String("username"),
				FirstName: cmd.String("first-name"),
				LastName:  cmd.String("last-name"),
				Password:  cmd.String("password"),
				Role:      entities.UserRoleAdmin,
			})
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}
			withAudit(cfg, db, func(log *audit.Service) {
				log.LogAdminCreated(ctx, user)
			})
			fmt.Fprintf(r.out, "created admin %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
}
