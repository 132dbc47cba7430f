package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chrisdamba/foodstore/internal/storefront"
	"github.com/spf13/cobra"
)

var quoteCmd = &cobra.Command{
	Use:   "quote [request.json]",
	Short: "Price and validate an order request against the catalog store",
	Long: `quote reads an order request in the same JSON shape the HTTP API accepts,
from a file or stdin, and prints the totals with every validation failure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		var body storefront.OrderRequest
		if err := json.NewDecoder(in).Decode(&body); err != nil {
			return fmt.Errorf("decode order request: %w", err)
		}

		session, err := offlineSession(cmd.Context())
		if err != nil {
			return err
		}
		req, err := session.Prepare(body)
		if err != nil {
			return err
		}

		q := session.Quote(req)
		return render(cmd.OutOrStdout(), format, map[string]any{
			"valid":  q.Valid(),
			"totals": q.Totals,
			"errors": q.Errors,
		})
	},
}

func init() {
	quoteCmd.Flags().String("format", "json", "json or yaml")
	rootCmd.AddCommand(quoteCmd)
}
