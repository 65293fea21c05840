package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/portal-cli/internal/franchisee"
	"github.com/sells-group/portal-cli/internal/model"
)

var (
	mergePrimary    string
	mergeDuplicates []string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge duplicate franchisees into a primary record",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, closePool, err := initFranchiseePool(ctx)
		if err != nil {
			return err
		}
		defer closePool()

		merged, err := franchisee.NewMerger(pool).Merge(ctx, mergePrimary, mergeDuplicates)

		result := model.MergeResult{Success: err == nil, MergedFranchisee: merged}
		if err != nil {
			result.Error = err.Error()
			zap.L().Error("merge failed",
				zap.String("primary_id", mergePrimary),
				zap.Strings("duplicate_ids", mergeDuplicates),
				zap.Error(err),
			)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return encErr
		}
		return err
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergePrimary, "primary", "", "id of the surviving franchisee (required)")
	mergeCmd.Flags().StringSliceVar(&mergeDuplicates, "duplicates", nil, "comma-separated ids to merge into the primary (required)")
	_ = mergeCmd.MarkFlagRequired("primary")
	_ = mergeCmd.MarkFlagRequired("duplicates")
	rootCmd.AddCommand(mergeCmd)
}
