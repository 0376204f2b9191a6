package cmd

import (
	"github.com/spf13/cobra"
)

var sendOpt struct {
	Destination string `json:"destination"`
	AmountSOL   string `json:"amount_sol"`
	WalletID    string `json:"wallet_id,omitempty"`
	Memo        string `json:"memo,omitempty"`
}

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "send SOL from a custodial wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if err := call(cmd.Context(), "POST", "/transactions/send", sendOpt, &resp); err != nil {
			return err
		}

		return printJson(cmd, resp)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [signature]",
	Short: "show the on-chain status of a transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if err := call(cmd.Context(), "GET", "/transactions/"+args[0], nil, &resp); err != nil {
			return err
		}

		return printJson(cmd, resp)
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "show the user's aggregate live balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if err := call(cmd.Context(), "GET", "/balance", nil, &resp); err != nil {
			return err
		}

		return printJson(cmd, resp)
	},
}

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "list the user's wallet activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if err := call(cmd.Context(), "GET", "/activities", nil, &resp); err != nil {
			return err
		}

		return printJson(cmd, resp)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(activitiesCmd)

	sendCmd.Flags().StringVar(&sendOpt.Destination, "to", "", "destination address")
	sendCmd.Flags().StringVar(&sendOpt.AmountSOL, "amount", "0", "amount in SOL")
	sendCmd.Flags().StringVar(&sendOpt.WalletID, "wallet", "", "source wallet id (optional, defaults to primary)")
	sendCmd.Flags().StringVar(&sendOpt.Memo, "memo", "", "memo (optional)")
}
