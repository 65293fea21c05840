package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/portal-cli/internal/db"
	"github.com/sells-group/portal-cli/internal/model"
)

var importFilePath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-import franchisees from a YAML file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		raw, err := os.ReadFile(importFilePath)
		if err != nil {
			return eris.Wrap(err, "read import file")
		}

		var records []model.Franchisee
		if err := yaml.Unmarshal(raw, &records); err != nil {
			return eris.Wrap(err, "parse import file")
		}
		if len(records) == 0 {
			return eris.New("import file contains no franchisees")
		}

		rows := make([][]any, 0, len(records))
		for _, f := range records {
			if f.Name == "" {
				return eris.Errorf("franchisee %q has no name", f.ID)
			}
			if f.ID == "" {
				f.ID = uuid.New().String()
			}
			rows = append(rows, []any{
				f.ID, f.Name,
				nullable(f.CompanyName), nullable(f.TaxID),
				nullable(f.Address), nullable(f.City), nullable(f.State), nullable(f.PostalCode),
			})
		}

		pool, closePool, err := initFranchiseePool(ctx)
		if err != nil {
			return err
		}
		defer closePool()

		n, err := db.BulkUpsert(ctx, pool, db.UpsertConfig{
			Table:        "franchisees",
			Columns:      []string{"id", "franchisee_name", "company_name", "tax_id", "address", "city", "state", "postal_code"},
			ConflictKeys: []string{"id"},
		}, rows)
		if err != nil {
			return eris.Wrap(err, "import franchisees")
		}

		zap.L().Info("import complete",
			zap.Int64("upserted", n),
			zap.String("file", importFilePath),
		)
		return nil
	},
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func init() {
	importCmd.Flags().StringVar(&importFilePath, "file", "", "path to YAML file of franchisees (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
