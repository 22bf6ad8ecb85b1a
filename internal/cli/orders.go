package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/checkout"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/report"
)

// CheckoutOptions holds flags for the checkout command.
type CheckoutOptions struct {
	*RootOptions
	User   int64
	Total  string
	Method string
}

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckoutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Turn a user's cart into an order",
		Long: `Turn a user's cart into a pickup order. --total is the amount the user
confirmed; the checkout is refused when the cart total no longer matches.

Exit codes:
  0 - Order placed
  1 - Checkout refused (empty cart, total mismatch, unknown user)
  2 - Command error

Examples:
  kantin checkout --user 1 --total 45000 --method QRIS`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(opts.User); err != nil {
				return err
			}
			total, err := decimal.NewFromString(opts.Total)
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid total %q", opts.Total))
			}
			method, err := model.ParsePaymentMethod(opts.Method)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --method", err)
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				receipt, err := a.repo.Checkout(ctx, opts.User, total, method)
				if err != nil {
					return a.out.Fail("checkout", err)
				}
				return a.out.Render(receipt, func(w io.Writer) error {
					fmt.Fprintf(w, "✓ Order %d placed, total %s, pickup at %s\n",
						receipt.Order.ID, Rupiah(receipt.Order.TotalPrice), model.FormatTime(receipt.Order.PickupTime))
					return writeOrderLines(w, receipt.Lines)
				})
			})
		},
	}

	cmd.Flags().Int64VarP(&opts.User, "user", "u", 0, "user id")
	cmd.Flags().StringVar(&opts.Total, "total", "", "total the user confirmed")
	cmd.Flags().StringVar(&opts.Method, "method", string(model.PaymentQRIS), "payment method (QRIS|Cash|Transfer)")
	_ = cmd.MarkFlagRequired("total")
	return cmd
}

// NewOrdersCommand creates the orders command group.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List, inspect and update orders",
		Long: `List, inspect and update orders.

Only pending orders can be completed or cancelled, and only pending payments
can be marked paid or cancelled.

Examples:
  kantin orders list --user 1
  kantin orders show 7
  kantin orders pay 7
  kantin orders complete 7
  kantin orders export --user 1 --out orders.xlsx`,
	}
	cmd.PersistentFlags().Int64VarP(&userID, "user", "u", 0, "user id")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List a user's orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				orders, err := a.repo.ListOrders(ctx, userID)
				if err != nil {
					return a.out.Fail("orders list", err)
				}
				return a.out.Render(orders, func(w io.Writer) error {
					return writeOrders(w, orders)
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <order-id>",
		Short: "Show an order with its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("order id", args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				d, err := a.repo.OrderDetail(ctx, id)
				if err != nil {
					return a.out.Fail("orders show", err)
				}
				return a.out.Render(d, func(w io.Writer) error {
					return writeDetail(w, d)
				})
			})
		},
	})

	type transition struct {
		use, short string
		fn         func(*app, context.Context, int64) (model.Order, error)
	}
	for _, t := range []transition{
		{"complete", "Mark a pending order completed", func(a *app, ctx context.Context, id int64) (model.Order, error) {
			return a.repo.CompleteOrder(ctx, id)
		}},
		{"cancel", "Cancel a pending order", func(a *app, ctx context.Context, id int64) (model.Order, error) {
			return a.repo.CancelOrder(ctx, id)
		}},
		{"pay", "Mark a pending payment paid", func(a *app, ctx context.Context, id int64) (model.Order, error) {
			return a.repo.MarkPaid(ctx, id)
		}},
		{"cancel-payment", "Cancel a pending payment", func(a *app, ctx context.Context, id int64) (model.Order, error) {
			return a.repo.CancelPayment(ctx, id)
		}},
	} {
		cmd.AddCommand(newTransitionCommand(rootOpts, t.use, t.short, t.fn))
	}

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export a user's order history to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("orders-%d.xlsx", userID)
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				if _, err := a.repo.Accounts.Get(ctx, userID); err != nil {
					return a.out.Fail("orders export", err)
				}
				history, err := a.repo.OrderHistory(ctx, userID)
				if err != nil {
					return a.out.Fail("orders export", err)
				}
				if err := writeWorkbook(out, history); err != nil {
					return WrapExitError(ExitFailure, "failed to write workbook", err)
				}
				a.logger.Debug("order history exported", "user_id", userID, "orders", len(history), "path", out)
				result := map[string]any{"path": out, "orders": len(history)}
				return a.out.Render(result, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "✓ Exported %d order(s) to %s\n", len(history), out)
					return err
				})
			})
		},
	}
	export.Flags().StringVarP(&out, "out", "o", "", "output file (default orders-<user>.xlsx)")
	cmd.AddCommand(export)

	return cmd
}

func newTransitionCommand(rootOpts *RootOptions, use, short string, fn func(*app, context.Context, int64) (model.Order, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <order-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("order id", args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				o, err := fn(a, ctx, id)
				if err != nil {
					return a.out.Fail("orders "+use, err)
				}
				return a.out.Render(o, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "✓ Order %d: status %s, payment %s\n", o.ID, o.Status, o.PaymentStatus)
					return err
				})
			})
		},
	}
}

func writeWorkbook(path string, history []checkout.Detail) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteOrderHistory(f, history); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeOrders(w io.Writer, orders []model.Order) error {
	if len(orders) == 0 {
		_, err := fmt.Fprintln(w, "No orders.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tPICKUP\tTOTAL\tMETHOD\tPAYMENT\tSTATUS")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID, model.FormatTime(o.OrderDate), model.FormatTime(o.PickupTime),
			Rupiah(o.TotalPrice), o.PaymentMethod, o.PaymentStatus, o.Status)
	}
	return tw.Flush()
}

func writeDetail(w io.Writer, d checkout.Detail) error {
	o := d.Order
	fmt.Fprintf(w, "Order %d for user %d\n", o.ID, o.UserID)
	fmt.Fprintf(w, "  placed %s, pickup %s\n", model.FormatTime(o.OrderDate), model.FormatTime(o.PickupTime))
	fmt.Fprintf(w, "  %s via %s, payment %s, status %s\n\n", Rupiah(o.TotalPrice), o.PaymentMethod, o.PaymentStatus, o.Status)
	return writeLineDetails(w, d.Lines)
}

func writeOrderLines(w io.Writer, lines []model.OrderLine) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MENU\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "#%d\t%d\t%s\t%s\n", l.MenuID, l.Quantity, Rupiah(l.UnitPrice), Rupiah(l.Subtotal()))
	}
	return tw.Flush()
}

func writeLineDetails(w io.Writer, lines []model.OrderLineDetail) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MENU\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", l.MenuName, l.Quantity, Rupiah(l.UnitPrice), Rupiah(l.Subtotal()))
	}
	return tw.Flush()
}
