package cli

import (
	"github.com/dmitrijs2005/inventory/internal/client/models"
	"github.com/spf13/cobra"
)

type smokeReport struct {
	Health     string                 `json:"health" yaml:"health"`
	Count      int64                  `json:"count" yaml:"count"`
	Categories []models.CategoryCount `json:"categories" yaml:"categories"`
	FirstPage  *models.ListResult     `json:"firstPage" yaml:"firstPage"`
}

// smokeCmd exercises the read endpoints once and stops at the first failure.
func (a *App) smokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "smoke",
		Short: "Check that the server answers health, list, count and category requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			report := smokeReport{}

			if err := a.client.Health(ctx); err != nil {
				return err
			}
			report.Health = "ok"

			page, err := a.client.List(ctx, models.ListOptions{})
			if err != nil {
				return err
			}
			report.FirstPage = page

			if report.Count, err = a.client.Count(ctx); err != nil {
				return err
			}
			if report.Categories, err = a.client.Categories(ctx); err != nil {
				return err
			}

			return a.render(report)
		},
	}
}
