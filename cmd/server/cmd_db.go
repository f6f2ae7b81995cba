package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/repository"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/service"
)

// server migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		// ConnectDatabase migrates as part of opening the connection
		_, appLogger, db, err := boot()
		if err != nil {
			return err
		}
		defer closeDB(db, appLogger)

		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
		return nil
	},
}

var superuserFlags struct {
	email    string
	password string
	name     string
}

// server createsuperuser
var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a staff user with superuser rights",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, appLogger, db, err := boot()
		if err != nil {
			return err
		}
		defer closeDB(db, appLogger)

		users := service.NewUserService(repository.NewUserRepository(db), repository.NewRefreshTokenRepository(db), appLogger)
		user, err := users.CreateSuperuser(superuserFlags.email, superuserFlags.password, superuserFlags.name)
		if err != nil {
			return fmt.Errorf("create superuser: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Superuser %s created (id %d).\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	flags := createSuperuserCmd.Flags()
	flags.StringVar(&superuserFlags.email, "email", "", "login email")
	flags.StringVar(&superuserFlags.password, "password", "", "login password")
	flags.StringVar(&superuserFlags.name, "name", "", "display name")
	_ = createSuperuserCmd.MarkFlagRequired("email")
	_ = createSuperuserCmd.MarkFlagRequired("password")
}
