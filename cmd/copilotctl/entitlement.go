package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/founder-copilot/internal/entitlement"
	"github.com/iliyamo/founder-copilot/internal/repository"
)

var (
	legacyEmail  string
	legacyRevoke bool
	showEmail    string
)

var grantLegacyCmd = &cobra.Command{
	Use:   "grant-legacy",
	Short: "Give a founder permanent access (or take it away with --revoke)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		db, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		u, _, err := profileByEmail(ctx, db, strings.ToLower(strings.TrimSpace(legacyEmail)))
		if err != nil {
			return err
		}
		if err := repository.NewProfileRepo(db).SetLegacy(ctx, u.ID, !legacyRevoke); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %d (%s) legacy=%t\n", u.ID, u.Email, !legacyRevoke)
		return nil
	},
}

var entitlementCmd = &cobra.Command{
	Use:   "entitlement",
	Short: "Print a founder's subscription state as the API reports it",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		db, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		u, _, err := profileByEmail(ctx, db, strings.ToLower(strings.TrimSpace(showEmail)))
		if err != nil {
			return err
		}
		sess := entitlement.NewSession(u.ID, repository.NewProfileRepo(db), nil)
		if err := sess.Refetch(ctx); err != nil {
			return err
		}
		out, err := json.MarshalIndent(sess.Snapshot(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	grantLegacyCmd.Flags().StringVar(&legacyEmail, "email", "", "Founder email")
	grantLegacyCmd.Flags().BoolVar(&legacyRevoke, "revoke", false, "Remove legacy access instead")
	_ = grantLegacyCmd.MarkFlagRequired("email")

	entitlementCmd.Flags().StringVar(&showEmail, "email", "", "Founder email")
	_ = entitlementCmd.MarkFlagRequired("email")
}
