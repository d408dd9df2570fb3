package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/pkg/storeclient"
)

func newCartCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local shopping cart",
	}

	cmd.AddCommand(
		newCartAddCmd(opts),
		newCartRemoveCmd(opts),
		newCartSetCmd(opts),
		newCartShowCmd(opts),
		newCartClearCmd(opts),
		newCartSummaryCmd(opts),
		newCartCheckoutCmd(opts),
	)
	return cmd
}

// withCart loads the cart, runs fn and saves the cart when fn succeeds.
func withCart(opts *options, fn func(c *cart.Cart) error) error {
	store, err := opts.store()
	if err != nil {
		return err
	}
	c, err := store.Load()
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	return store.Save(c)
}

func loadCart(opts *options) (*cart.Cart, error) {
	store, err := opts.store()
	if err != nil {
		return nil, err
	}
	return store.Load()
}

func parseProductID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("product id %q is not a uuid", s)
	}
	return id, nil
}

func newCartAddCmd(opts *options) *cobra.Command {
	var (
		qty   int64
		size  string
		color string
	)

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart at its current price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}

			p, err := opts.client().GetProduct(cmd.Context(), id)
			if err != nil {
				return err
			}
			item := cart.Item{
				ProductID: p.ID,
				Name:      p.Name,
				Price:     p.EffectivePrice(),
				Quantity:  qty,
				Size:      size,
				Color:     color,
				Stock:     p.Stock,
			}
			if len(p.Images) > 0 {
				item.Image = p.Images[0]
			}

			return withCart(opts, func(c *cart.Cart) error {
				if err := c.Add(item); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %d x %s\n", qty, p.Name)
				return nil
			})
		},
	}

	cmd.Flags().Int64VarP(&qty, "quantity", "q", 1, "quantity to add")
	cmd.Flags().StringVar(&size, "size", "", "size variant")
	cmd.Flags().StringVar(&color, "color", "", "color variant")
	return cmd
}

func newCartRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove every line of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			return withCart(opts, func(c *cart.Cart) error {
				c.Remove(id)
				return nil
			})
		},
	}
}

func newCartSetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set the quantity of a product; zero removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("quantity %q is not a number", args[1])
			}
			return withCart(opts, func(c *cart.Cart) error {
				return c.UpdateQuantity(id, qty)
			})
		},
	}
}

func newCartShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List cart lines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadCart(opts)
			if err != nil {
				return err
			}
			printItems(cmd.OutOrStdout(), c)
			return nil
		},
	}
}

func newCartClearCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCart(opts, func(c *cart.Cart) error {
				c.Clear()
				return nil
			})
		},
	}
}

func newCartSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show subtotal, shipping, tax and total",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadCart(opts)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), c.Summary())
			return nil
		},
	}
}

func newCartCheckoutCmd(opts *options) *cobra.Command {
	var addr storeclient.ShippingAddress

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Open a payment and place an order for the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCart(opts, func(c *cart.Cart) error {
				r, err := cart.Checkout(cmd.Context(), opts.client(), c, addr)
				if err != nil {
					return err
				}
				c.Clear()

				out := cmd.OutOrStdout()
				printSummary(out, r.Summary)
				fmt.Fprintf(out, "order:          %s (%s)\n", r.Order.ID, r.Order.OrderStatus)
				fmt.Fprintf(out, "gateway order:  %s\n", r.Intent.OrderID)
				fmt.Fprintf(out, "amount due:     %d %s (minor units)\n", r.Intent.Amount, r.Intent.Currency)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr.Name, "name", "", "recipient name")
	f.StringVar(&addr.Phone, "phone", "", "recipient phone")
	f.StringVar(&addr.Street, "street", "", "street address")
	f.StringVar(&addr.City, "city", "", "city")
	f.StringVar(&addr.State, "state", "", "state")
	f.StringVar(&addr.Pincode, "pincode", "", "postal code")
	f.StringVar(&addr.Country, "country", "IN", "country")
	for _, name := range []string{"name", "phone", "street", "city", "state", "pincode"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func printItems(w io.Writer, c *cart.Cart) {
	if len(c.Items) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tVARIANT\tQTY\tPRICE\tLINE")
	for _, it := range c.Items {
		variant := it.Size
		if it.Color != "" {
			if variant != "" {
				variant += "/"
			}
			variant += it.Color
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			it.ProductID, it.Name, variant, it.Quantity, it.Price.StringFixed(2), it.LineTotal().StringFixed(2))
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, s cart.Summary) {
	fmt.Fprintf(w, "items:          %d\n", s.TotalItems)
	fmt.Fprintf(w, "subtotal:       %s\n", s.Subtotal.StringFixed(2))
	fmt.Fprintf(w, "shipping:       %s\n", s.Shipping.StringFixed(2))
	fmt.Fprintf(w, "tax:            %s\n", s.Tax.StringFixed(2))
	fmt.Fprintf(w, "total:          %s\n", s.Total.StringFixed(2))
}
