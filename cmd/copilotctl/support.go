package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/founder-copilot/internal/config"
	"github.com/iliyamo/founder-copilot/internal/llm"
	"github.com/iliyamo/founder-copilot/internal/payment"
)

var (
	signOrder   string
	signPayment string
	signSecret  string
	country     string
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Print the signature the checkout callback must carry for an order/payment pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := signSecret
		if secret == "" {
			secret = config.LoadRazorpayConfig().KeySecret
		}
		if secret == "" {
			return errors.New("RAZORPAY_KEY_SECRET is not configured")
		}
		fmt.Fprintln(cmd.OutOrStdout(), payment.Sign(secret, signOrder, signPayment))
		return nil
	},
}

var complianceCmd = &cobra.Command{
	Use:   "compliance",
	Short: "Print the filing obligations the co-founder knows for a country",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(cmd.OutOrStdout(), llm.ComplianceTable(llm.RequirementsFor(country)))
		return nil
	},
}

func init() {
	signCmd.Flags().StringVar(&signOrder, "order", "", "Provider order id")
	signCmd.Flags().StringVar(&signPayment, "payment", "", "Provider payment id")
	signCmd.Flags().StringVar(&signSecret, "secret", "", "Key secret (defaults to RAZORPAY_KEY_SECRET)")
	_ = signCmd.MarkFlagRequired("order")
	_ = signCmd.MarkFlagRequired("payment")

	complianceCmd.Flags().StringVar(&country, "country", "", "Country name or ISO code; unknown values print the generic rows")
}
