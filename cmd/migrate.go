package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/portal-cli/internal/franchisee"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initValuationStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate valuations")
		}

		if cfg.Store.Driver == "postgres" {
			pool, closePool, err := initFranchiseePool(ctx)
			if err != nil {
				return err
			}
			defer closePool()

			if err := franchisee.NewPostgresStore(pool).Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate franchisees")
			}
		}

		zap.L().Info("migration complete", zap.String("driver", cfg.Store.Driver))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
