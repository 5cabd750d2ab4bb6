package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"partstrack/config"
	"partstrack/service/inventory"
	"partstrack/service/notify"
	"partstrack/service/purchaseorder"
)

var generateThreshold int

var poGenerateCmd = &cobra.Command{
	Use:   "po:generate",
	Short: "Create draft purchase orders for parts at or below their minimum quantity",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}

		svc := purchaseorder.NewService(db, inventory.NewAdjuster(db, notify.Fanout{}), notify.Fanout{})

		var threshold *int
		if cmd.Flags().Changed("threshold") {
			threshold = &generateThreshold
		}
		res, err := svc.GenerateForLowStock(threshold)
		if err != nil {
			fmt.Printf("Generation failed: %v\n", err)
			os.Exit(1)
		}

		for _, po := range res.Orders {
			fmt.Printf("  created %s (%d item(s), total %.2f)\n", po.PONumber, len(po.Items), po.TotalAmount)
		}
		for _, partID := range res.SkippedNoSupplier {
			fmt.Printf("  [warn] part %d is low on stock but has no supplier\n", partID)
		}
		fmt.Printf(`
=== Generation Report ===
Orders created:      %d
Skipped, no supplier: %d
Skipped, on order:    %d
=========================
`, len(res.Orders), len(res.SkippedNoSupplier), len(res.SkippedPending))
	},
}

func init() {
	poGenerateCmd.Flags().IntVarP(&generateThreshold, "threshold", "t", 0, "Override quantity threshold (default: per-part minimum)")
	Register(poGenerateCmd)
}
