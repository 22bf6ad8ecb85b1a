package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the catalog into an empty database",
		Long: `Insert tenants and menus into an empty database. Without --catalog the
built-in canteen catalog is used. A database that already has tenants is
left untouched.

Examples:
  kantin seed
  kantin seed --catalog ./catalog.cue`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, false)
			if err != nil {
				return err
			}
			defer a.close()

			seeded, err := a.seed(ctxOf(cmd), catalogPath)
			if err != nil {
				return err
			}
			return a.out.Render(map[string]bool{"seeded": seeded}, func(w io.Writer) error {
				if seeded {
					_, err := fmt.Fprintln(w, "✓ Catalog seeded")
					return err
				}
				_, err := fmt.Fprintln(w, "Catalog already present, nothing to do")
				return err
			})
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "CUE catalog file (default: built-in catalog)")
	return cmd
}

// NewTenantsCommand creates the tenants command.
func NewTenantsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tenants",
		Short: "List canteen tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				tenants, err := a.repo.Catalog.ListTenants(ctx)
				if err != nil {
					return a.out.Fail("tenants", err)
				}
				return a.out.Render(tenants, func(w io.Writer) error {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tNAME\tLOCATION")
					for _, t := range tenants {
						fmt.Fprintf(tw, "%d\t%s\t%s\n", t.ID, t.Name, t.Location)
					}
					return tw.Flush()
				})
			})
		},
	}
}

// MenusOptions holds flags for the menus command.
type MenusOptions struct {
	*RootOptions
	Tenant   int64
	Query    string
	Category string
}

// NewMenusCommand creates the menus command.
func NewMenusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MenusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "menus",
		Short: "List or search menus",
		Long: `List menus. Filters are exclusive: --tenant lists one tenant's menus,
--category lists a category, --q searches names and descriptions.

Examples:
  kantin menus --tenant 1
  kantin menus --q gudeg
  kantin menus --category Minuman`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				menus, err := listMenus(ctx, a, opts)
				if err != nil {
					return a.out.Fail("menus", err)
				}
				return a.out.Render(menus, func(w io.Writer) error {
					return writeMenus(w, menus)
				})
			})
		},
	}

	cmd.Flags().Int64Var(&opts.Tenant, "tenant", 0, "tenant id")
	cmd.Flags().StringVar(&opts.Query, "q", "", "search text")
	cmd.Flags().StringVar(&opts.Category, "category", "", "menu category")
	cmd.MarkFlagsMutuallyExclusive("tenant", "q", "category")
	return cmd
}

func listMenus(ctx context.Context, a *app, opts *MenusOptions) ([]model.Menu, error) {
	switch {
	case opts.Tenant != 0:
		if _, err := a.repo.Catalog.GetTenant(ctx, opts.Tenant); err != nil {
			return nil, err
		}
		return a.repo.Catalog.ListMenusByTenant(ctx, opts.Tenant)
	case opts.Category != "":
		return a.repo.Catalog.MenusByCategory(ctx, opts.Category)
	default:
		return a.repo.Catalog.SearchMenus(ctx, opts.Query)
	}
}

func writeMenus(w io.Writer, menus []model.Menu) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTENANT\tNAME\tCATEGORY\tPRICE")
	for _, m := range menus {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", m.ID, m.TenantID, m.Name, m.Category, Rupiah(m.Price))
	}
	return tw.Flush()
}
