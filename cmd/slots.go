package cmd

import (
	"fmt"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/scheduling"
	"github.com/spf13/cobra"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "List the slots the catalog store offers for a cart",
	Example: `  foodstore slots --catalog examples/catalog.yaml --fulfillment pickup --item carrot-cake:2
  foodstore slots --catalog examples/catalog.yaml --format yaml --dedupe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fulfillment, _ := cmd.Flags().GetString("fulfillment")
		itemArgs, _ := cmd.Flags().GetStringArray("item")
		format, _ := cmd.Flags().GetString("format")
		dedupe, _ := cmd.Flags().GetBool("dedupe")

		ft := models.FulfillmentType(fulfillment)
		if !ft.Valid() {
			return fmt.Errorf("unknown fulfillment type %q", fulfillment)
		}
		items, err := parseItems(itemArgs)
		if err != nil {
			return err
		}

		session, err := offlineSession(cmd.Context())
		if err != nil {
			return err
		}
		lines, err := session.ResolveCart(items)
		if err != nil {
			return err
		}

		slots := session.Slots(ft, lines)
		if dedupe {
			slots = scheduling.Dedupe(slots)
		}

		if format == "text" {
			for _, s := range slots {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		}
		return render(cmd.OutOrStdout(), format, map[string]any{
			"store_id":    session.Store().ID,
			"fulfillment": ft,
			"same_day":    session.Scheduler().SameDayAllowed(session.Store(), lines),
			"slots":       slots,
		})
	},
}

func init() {
	slotsCmd.Flags().String("fulfillment", string(models.FulfillmentDelivery), "delivery or pickup")
	slotsCmd.Flags().StringArray("item", nil, "cart item as productID[:quantity], repeatable")
	slotsCmd.Flags().String("format", "text", "text, json or yaml")
	slotsCmd.Flags().Bool("dedupe", false, "drop repeated slots from overlapping windows")
	rootCmd.AddCommand(slotsCmd)
}
