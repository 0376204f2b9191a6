package cmd

import (
	"github.com/spf13/cobra"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "wallet commands",
}

var walletEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "ensure the user has a primary custodial wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if err := call(cmd.Context(), "POST", "/wallets/ensure", nil, &resp); err != nil {
			return err
		}

		return printJson(cmd, resp)
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "list the user's wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if err := call(cmd.Context(), "GET", "/wallets", nil, &resp); err != nil {
			return err
		}

		return printJson(cmd, resp)
	},
}

var walletSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "show the user's wallet summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if err := call(cmd.Context(), "GET", "/wallets/summary", nil, &resp); err != nil {
			return err
		}

		return printJson(cmd, resp)
	},
}

var connectOpt struct {
	PublicKey string `json:"public_key"`
	Label     string `json:"label,omitempty"`
	Provider  string `json:"provider,omitempty"`
}

var walletConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "connect an external wallet by public key",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if err := call(cmd.Context(), "POST", "/wallets/connect", connectOpt, &resp); err != nil {
			return err
		}

		return printJson(cmd, resp)
	},
}

var walletRefreshCmd = &cobra.Command{
	Use:   "refresh [wallet-id]",
	Short: "refresh a wallet's cached balance from chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if err := call(cmd.Context(), "POST", "/wallets/"+args[0]+"/refresh", nil, &resp); err != nil {
			return err
		}

		return printJson(cmd, resp)
	},
}

func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletEnsureCmd)
	walletCmd.AddCommand(walletListCmd)
	walletCmd.AddCommand(walletSummaryCmd)
	walletCmd.AddCommand(walletConnectCmd)
	walletCmd.AddCommand(walletRefreshCmd)

	walletConnectCmd.Flags().StringVar(&connectOpt.PublicKey, "key", "", "public key")
	walletConnectCmd.Flags().StringVar(&connectOpt.Label, "label", "", "label (optional)")
	walletConnectCmd.Flags().StringVar(&connectOpt.Provider, "provider", "", "provider (optional)")
}
