package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iliyamo/founder-copilot/internal/config"
	"github.com/iliyamo/founder-copilot/internal/database"
	"github.com/iliyamo/founder-copilot/internal/model"
	"github.com/iliyamo/founder-copilot/internal/repository"
)

var sqlitePath string

var rootCmd = &cobra.Command{
	Use:   "copilotctl",
	Short: "Support tooling for founder-copilot",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "Use a SQLite file instead of the MySQL database from the environment")
	rootCmd.AddCommand(grantLegacyCmd, entitlementCmd, signCmd, complianceCmd)
}

// openDatabase opens the SQLite file given with --sqlite, otherwise the
// MySQL database described by the server's environment.
func openDatabase(ctx context.Context) (*sql.DB, error) {
	if sqlitePath != "" {
		return database.OpenSQLite(ctx, sqlitePath)
	}
	return database.Open(ctx, config.Load())
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 10*time.Second)
}

// profileByEmail resolves an email to the user and profile rows.
func profileByEmail(ctx context.Context, db *sql.DB, email string) (model.User, model.Profile, error) {
	u, err := repository.NewUserRepo(db).GetByEmail(ctx, email)
	if err != nil {
		return model.User{}, model.Profile{}, fmt.Errorf("user %s: %w", email, err)
	}
	p, err := repository.NewProfileRepo(db).GetByUserID(ctx, u.ID)
	if err != nil {
		return u, model.Profile{}, fmt.Errorf("profile of %s: %w", email, err)
	}
	return u, p, nil
}
