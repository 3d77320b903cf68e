package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var peersCmd = &cobra.Command{
	Use:   "peers [address...]",
	Short: "Register peer nodes, or print the known peers when none are given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return call(cmd.OutOrStdout(), http.MethodGet, "/v1/peers", nil)
		}

		nodes := struct {
			Nodes []string `json:"nodes"`
		}{
			Nodes: args,
		}
		return call(cmd.OutOrStdout(), http.MethodPost, "/v1/peers", nodes)
	},
}

func init() {
	rootCmd.AddCommand(peersCmd)
}
