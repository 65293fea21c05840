package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/portal-cli/internal/model"
	"github.com/sells-group/portal-cli/internal/valuation"
)

var (
	valuateScenarios []string
	valuateSave      bool
)

// scenario is the YAML shape of a valuation scenario file.
type scenario struct {
	Label        string                `yaml:"label"`
	FranchiseeID string                `yaml:"franchisee_id"`
	Inputs       model.ValuationInputs `yaml:"inputs"`
	YearlyData   []model.YearlyData    `yaml:"yearly_data"`
}

var valuateCmd = &cobra.Command{
	Use:   "valuate",
	Short: "Project the discounted cash-flow value of one or more scenarios",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		results := make([]*model.Valuation, len(valuateScenarios))

		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for i, path := range valuateScenarios {
			g.Go(func() error {
				v, err := runScenario(path)
				if err != nil {
					return eris.Wrapf(err, "scenario %s", path)
				}
				results[i] = v
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if valuateSave {
			st, err := initValuationStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, v := range results {
				if err := st.CreateValuation(ctx, v); err != nil {
					return eris.Wrapf(err, "save valuation %q", v.Label)
				}
				zap.L().Info("valuation saved",
					zap.String("id", v.ID),
					zap.String("label", v.Label),
					zap.Float64("total_price", v.TotalPrice),
				)
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	},
}

func runScenario(path string) (*model.Valuation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read scenario")
	}

	var sc scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, eris.Wrap(err, "parse scenario")
	}

	if sc.Inputs.RemainingYears == 0 && sc.Inputs.ChangeDate != nil && sc.Inputs.EndDate != nil {
		sc.Inputs.RemainingYears = valuation.RemainingYears(*sc.Inputs.ChangeDate, *sc.Inputs.EndDate)
	}
	if err := valuation.ValidateInputs(sc.Inputs); err != nil {
		return nil, err
	}

	yearly := valuation.DeriveYearSlots(sc.Inputs.RemainingYears, sc.YearlyData)
	res := valuation.Project(sc.Inputs, yearly)

	return &model.Valuation{
		FranchiseeID: sc.FranchiseeID,
		Label:        sc.Label,
		Inputs:       sc.Inputs,
		YearlyData:   yearly,
		Projections:  res.Projections,
		TotalPrice:   res.TotalPrice,
	}, nil
}

func init() {
	valuateCmd.Flags().StringArrayVar(&valuateScenarios, "scenario", nil, "path to a scenario YAML file (repeatable)")
	valuateCmd.Flags().BoolVar(&valuateSave, "save", false, "persist the valuation results")
	_ = valuateCmd.MarkFlagRequired("scenario")
	rootCmd.AddCommand(valuateCmd)
}
