package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine a block with the pending transactions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, "/v1/mine", nil)
	},
}

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the chain held by the node.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, "/v1/chain", nil)
	},
}

var validCmd = &cobra.Command{
	Use:   "valid",
	Short: "Check the chain held by the node is valid.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, "/v1/chain/valid", nil)
	},
}

var consensusCmd = &cobra.Command{
	Use:   "consensus",
	Short: "Replace the node chain with the longest valid chain of its peers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, "/v1/consensus", nil)
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(chainCmd)
	chainCmd.AddCommand(validCmd)
	rootCmd.AddCommand(consensusCmd)
}
