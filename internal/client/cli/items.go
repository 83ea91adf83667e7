package cli

import (
	"strings"

	"github.com/dmitrijs2005/inventory/internal/client/models"
	"github.com/spf13/cobra"
)

func (a *App) importSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-sample",
		Short: "Insert the demonstration items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.client.ImportSample(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(map[string]int{"inserted": n})
		},
	}
}

func (a *App) listCmd() *cobra.Command {
	var (
		opts           models.ListOptions
		minQty, maxQty float64
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items with optional filters, sorting and paging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("min-qty") {
				opts.MinQty = &minQty
			}
			if cmd.Flags().Changed("max-qty") {
				opts.MaxQty = &maxQty
			}

			res, err := a.client.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.render(res)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Q, "query", "q", "", "full-text search terms")
	f.StringVar(&opts.Category, "category", "", "exact category")
	f.Float64Var(&minQty, "min-qty", 0, "minimum quantity (inclusive)")
	f.Float64Var(&maxQty, "max-qty", 0, "maximum quantity (inclusive)")
	f.IntVar(&opts.Page, "page", 0, "page number, starting at 1")
	f.IntVar(&opts.Limit, "limit", 0, "page size")
	f.StringVar(&opts.Sort, "sort", "", "ordering as field:asc or field:desc")

	return cmd
}

func (a *App) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := a.client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(item)
		},
	}
}

func (a *App) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count all items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.client.Count(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(map[string]int64{"count": n})
		},
	}
}

func (a *App) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Count items per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := a.client.Categories(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(counts)
		},
	}
}

func (a *App) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <terms...>",
		Short: "Full-text search, best matches first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := a.client.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.render(docs)
		},
	}
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.render(map[string]string{"deletedId": args[0]})
		},
	}
}

func (a *App) adjustCmd() *cobra.Command {
	var delta int64

	cmd := &cobra.Command{
		Use:   "adjust <id...>",
		Short: "Add --delta to the quantity of every listed item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Adjust(cmd.Context(), args, delta)
			if err != nil {
				return err
			}
			return a.render(res)
		},
	}
	cmd.Flags().Int64VarP(&delta, "delta", "d", 0, "quantity change, may be negative")

	return cmd
}
