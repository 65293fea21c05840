package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/portal-cli/internal/dedupe"
	"github.com/sells-group/portal-cli/internal/franchisee"
)

var (
	dedupeCity  string
	dedupeState string
	dedupeLimit int
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Find probable duplicate franchisees",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, closePool, err := initFranchiseePool(ctx)
		if err != nil {
			return err
		}
		defer closePool()

		fstore := franchisee.NewPostgresStore(pool)
		records, err := fstore.ListFranchisees(ctx, franchisee.ListFilter{
			City:  dedupeCity,
			State: dedupeState,
			Limit: dedupeLimit,
		})
		if err != nil {
			return err
		}

		detector := dedupe.NewDetector(dedupe.Options{
			NameThreshold:    cfg.Dedupe.NameThreshold,
			CompanyThreshold: cfg.Dedupe.CompanyThreshold,
		})
		groups := detector.Detect(records)

		zap.L().Info("duplicate scan complete",
			zap.Int("records", len(records)),
			zap.Int("groups", len(groups)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	},
}

func init() {
	dedupeCmd.Flags().StringVar(&dedupeCity, "city", "", "limit the scan to one city")
	dedupeCmd.Flags().StringVar(&dedupeState, "state", "", "limit the scan to one state")
	dedupeCmd.Flags().IntVar(&dedupeLimit, "limit", 0, "max records to scan (default 500)")
	rootCmd.AddCommand(dedupeCmd)
}
