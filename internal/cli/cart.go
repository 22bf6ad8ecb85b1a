package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/cart"
)

// parseID parses a positive row id argument.
func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid %s %q", what, s))
	}
	return id, nil
}

// requireUser fails the command when --user was not given.
func requireUser(id int64) error {
	if id <= 0 {
		return NewExitError(ExitCommandError, "--user is required")
	}
	return nil
}

// NewCartCommand creates the cart command group.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and edit a user's cart",
		Long: `Show and edit a user's cart. Lines are priced at the current menu price.

Examples:
  kantin cart show --user 1
  kantin cart add --user 1 --menu 3 --qty 2 --note "tanpa sambal"
  kantin cart set 4 3
  kantin cart rm 4
  kantin cart clear --user 1`,
	}
	cmd.PersistentFlags().Int64VarP(&userID, "user", "u", 0, "user id")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show cart lines and total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				v, err := a.repo.CartView(ctx, userID)
				if err != nil {
					return a.out.Fail("cart", err)
				}
				return a.out.Render(v, func(w io.Writer) error {
					return writeCart(w, v)
				})
			})
		},
	})

	var qty int
	var note string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a menu to the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			menuID, _ := cmd.Flags().GetInt64("menu")
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				lineID, err := a.repo.AddToCart(ctx, userID, menuID, qty, note)
				if err != nil {
					return a.out.Fail("cart add", err)
				}
				return a.out.Render(map[string]int64{"cart_id": lineID}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "✓ Cart line %d\n", lineID)
					return err
				})
			})
		},
	}
	add.Flags().Int64("menu", 0, "menu id")
	add.Flags().IntVar(&qty, "qty", 1, "quantity")
	add.Flags().StringVar(&note, "note", "", "note for the kitchen")
	_ = add.MarkFlagRequired("menu")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "set <cart-id> <quantity>",
		Short: "Set a line's quantity (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("cart id", args[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid quantity %q", args[1]))
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				if err := a.repo.SetQuantity(ctx, id, n); err != nil {
					return a.out.Fail("cart set", err)
				}
				return a.out.Render(map[string]any{"cart_id": id, "quantity": max(n, 0)}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "✓ Cart line %d quantity %d\n", id, max(n, 0))
					return err
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "note <cart-id> <note>",
		Short: "Replace a line's note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("cart id", args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				if err := a.repo.UpdateNote(ctx, id, args[1]); err != nil {
					return a.out.Fail("cart note", err)
				}
				return a.out.Success(map[string]any{"cart_id": id, "note": args[1]})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <cart-id>",
		Aliases: []string{"remove"},
		Short:   "Remove a cart line",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("cart id", args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				if err := a.repo.RemoveLine(ctx, id); err != nil {
					return a.out.Fail("cart rm", err)
				}
				return a.out.Render(map[string]int64{"removed": id}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "✓ Removed cart line %d\n", id)
					return err
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				n, err := a.repo.ClearCart(ctx, userID)
				if err != nil {
					return a.out.Fail("cart clear", err)
				}
				return a.out.Render(map[string]int64{"removed": n}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "✓ Removed %d line(s)\n", n)
					return err
				})
			})
		},
	})

	return cmd
}

func writeCart(w io.Writer, v cart.View) error {
	if len(v.Lines) == 0 {
		_, err := fmt.Fprintln(w, "Cart is empty.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tMENU\tQTY\tPRICE\tSUBTOTAL\tNOTE")
	for _, l := range v.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n",
			l.ID, l.MenuName, l.Quantity, Rupiah(l.UnitPrice), Rupiah(l.Subtotal()), l.Note)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d line(s), total %s\n", v.Count, Rupiah(v.Total))
	return err
}
