package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/academy/internal/app"
	"github.com/mesh-intelligence/academy/pkg/cart"
)

func newCartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and edit the shopping cart",
		Long:  "Cart commands act on the cart named by --cart, or cart_id from config.yaml.",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCart(cmd, func(s *app.Session) (cart.Ledger, error) {
				return s.Cart(), nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runCart(cmd, func(s *app.Session) (cart.Ledger, error) {
				return s.AddToCart(id)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runCart(cmd, func(s *app.Session) (cart.Ledger, error) {
				return s.RemoveFromCart(id)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "adjust <product-id> <delta>",
		Short:   "Change a product's quantity by delta",
		Long:    "Adjust adds delta to the quantity. A result below one leaves the cart unchanged.",
		Example: "  academy cart adjust 3 2\n  academy cart adjust 3 -- -1",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return userError(fmt.Errorf("invalid delta %q", args[1]))
			}
			return runCart(cmd, func(s *app.Session) (cart.Ledger, error) {
				return s.AdjustQuantity(id, delta)
			})
		},
	})
	return cmd
}

// runCart opens the configured cart, applies op, and prints the result.
func runCart(cmd *cobra.Command, op func(s *app.Session) (cart.Ledger, error)) error {
	return withEnv(func(e *env) error {
		s, err := e.session()
		if err != nil {
			return err
		}
		if _, err := s.OpenCart(); err != nil {
			return err
		}
		ledger, err := op(s)
		if err != nil {
			return err
		}
		view := newCartView(e.settings.CartID, ledger)
		if flags.jsonMode {
			return printJSON(cmd, view)
		}
		return printCart(cmd, view)
	})
}

// cartView is the JSON shape of every cart command.
type cartView struct {
	CartID   string         `json:"cart_id"`
	Lines    []cartLineView `json:"lines"`
	Items    int            `json:"items"`
	Subtotal string         `json:"subtotal"`
}

type cartLineView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Total     string `json:"total"`
}

func newCartView(cartID string, ledger cart.Ledger) cartView {
	view := cartView{
		CartID:   cartID,
		Lines:    []cartLineView{},
		Items:    ledger.TotalCount(),
		Subtotal: ledger.Subtotal().StringFixed(2),
	}
	for _, entry := range ledger.Entries() {
		total := entry.Product.Price.Mul(decimal.NewFromInt(int64(entry.Quantity)))
		view.Lines = append(view.Lines, cartLineView{
			ProductID: entry.Product.ID,
			Name:      entry.Product.Name,
			Quantity:  entry.Quantity,
			Price:     entry.Product.Price.StringFixed(2),
			Total:     total.StringFixed(2),
		})
	}
	return view
}

func printCart(cmd *cobra.Command, view cartView) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Cart %s\n", view.CartID)
	if len(view.Lines) == 0 {
		fmt.Fprintln(out, "  (empty)")
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, l := range view.Lines {
		fmt.Fprintf(w, "  %d\t%s\t%d x %s\t%s\n", l.ProductID, l.Name, l.Quantity, l.Price, l.Total)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Items: %d  Subtotal: %s\n", view.Items, view.Subtotal)
	return nil
}
