package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/academy/pkg/search"
	"github.com/mesh-intelligence/academy/pkg/types"
)

func newProductCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Search products",
	}
	cmd.AddCommand(newProductSearchCmd())
	return cmd
}

func newProductSearchCmd() *cobra.Command {
	var category, minPrice, maxPrice string
	cmd := &cobra.Command{
		Use:     "search [terms...]",
		Short:   "Search products by text, category, and price",
		Example: "  academy product search mat --category gear --max 30",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := search.ProductQuery{Text: strings.Join(args, " "), Category: category}
			var err error
			if q.MinPrice, err = parsePrice("--min", minPrice); err != nil {
				return err
			}
			if q.MaxPrice, err = parsePrice("--max", maxPrice); err != nil {
				return err
			}

			return withEnv(func(e *env) error {
				products, err := fetchProducts(e)
				if err != nil {
					return err
				}
				found := search.Products(products, q)
				if flags.jsonMode {
					return printJSON(cmd, found)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, p := range found {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "exact category (case-insensitive)")
	cmd.Flags().StringVar(&minPrice, "min", "", "minimum price, inclusive")
	cmd.Flags().StringVar(&maxPrice, "max", "", "maximum price, inclusive")
	return cmd
}

// parsePrice parses an optional decimal flag value; empty means no bound.
func parsePrice(flag, value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, userError(fmt.Errorf("%s: invalid price %q", flag, value))
	}
	return &d, nil
}

func fetchProducts(e *env) ([]types.Product, error) {
	tbl, err := e.table(types.TableProducts)
	if err != nil {
		return nil, err
	}
	rows, err := tbl.Fetch(nil)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]types.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, *row.(*types.Product))
	}
	return products, nil
}
