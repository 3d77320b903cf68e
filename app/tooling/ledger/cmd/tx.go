package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var (
	sender   string
	receiver string
	amount   float64
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Submit a transaction to the pending pool.",
	RunE: func(cmd *cobra.Command, args []string) error {
		tx := struct {
			Sender   string  `json:"sender"`
			Receiver string  `json:"receiver"`
			Amount   float64 `json:"amount"`
		}{
			Sender:   sender,
			Receiver: receiver,
			Amount:   amount,
		}
		return call(cmd.OutOrStdout(), http.MethodPost, "/v1/tx", tx)
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Print the pending transactions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, "/v1/tx/pending", nil)
	},
}

func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(pendingCmd)
	txCmd.Flags().StringVarP(&sender, "sender", "s", "", "Sender of the transaction.")
	txCmd.Flags().StringVarP(&receiver, "receiver", "r", "", "Receiver of the transaction.")
	txCmd.Flags().Float64VarP(&amount, "amount", "a", 0, "Amount to transfer.")
	txCmd.MarkFlagRequired("sender")
	txCmd.MarkFlagRequired("receiver")
	txCmd.MarkFlagRequired("amount")
}
