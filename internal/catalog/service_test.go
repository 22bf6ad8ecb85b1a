package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/liveq"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/store"
)

func seeded(t *testing.T) (*store.Store, *Service) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cat, err := Default()
	require.NoError(t, err)
	seededNow, err := SeedIfEmpty(context.Background(), s, cat, nil)
	require.NoError(t, err)
	require.True(t, seededNow)

	return s, New(s, nil)
}

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = name(it)
	}
	return out
}

func menuName(m model.Menu) string     { return m.Name }
func tenantName(t model.Tenant) string { return t.Name }

func TestSeedIfEmpty_OnlyOnce(t *testing.T) {
	s, _ := seeded(t)
	cat, err := Default()
	require.NoError(t, err)

	again, err := SeedIfEmpty(context.Background(), s, cat, nil)
	require.NoError(t, err)
	assert.False(t, again)

	n, err := s.Count(context.Background(), store.TableMenus, store.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 15, n)
}

func TestSeed_IDsFollowFileOrder(t *testing.T) {
	_, svc := seeded(t)
	ctx := context.Background()

	m, err := svc.GetMenu(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Nasi Gudeg", m.Name)
	assert.Equal(t, int64(1), m.TenantID)

	m, err = svc.GetMenu(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, "Kopi Hitam", m.Name)
	assert.Equal(t, int64(5), m.TenantID)

	_, err = svc.GetMenu(ctx, 16)
	assert.True(t, errs.Is(err, errs.NotFound))
}

func TestListTenants_ByName(t *testing.T) {
	_, svc := seeded(t)

	tenants, err := svc.ListTenants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Ayam Geprek Bensu",
		"Es Teh Manis",
		"Kedai Mie Ayam",
		"Nasi Gudeg Jogja",
		"Warung Bu Sari",
	}, names(tenants, tenantName))
}

func TestListMenusByTenant(t *testing.T) {
	_, svc := seeded(t)

	menus, err := svc.ListMenusByTenant(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bakso Urat", "Mie Ayam Bakso", "Pangsit Goreng"}, names(menus, menuName))

	none, err := svc.ListMenusByTenant(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchMenus(t *testing.T) {
	_, svc := seeded(t)
	ctx := context.Background()

	menus, err := svc.SearchMenus(ctx, "gudeg")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gudeg Komplit", "Gudeg Vegetarian", "Nasi Gudeg"}, names(menus, menuName))

	all, err := svc.SearchMenus(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 15)

	// Wildcards are literal.
	none, err := svc.SearchMenus(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCategories(t *testing.T) {
	_, svc := seeded(t)
	ctx := context.Background()

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Makanan Utama", "Minuman", "Snack"}, cats)

	snacks, err := svc.MenusByCategory(ctx, "Snack")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pangsit Goreng"}, names(snacks, menuName))
}

func TestAddMenu(t *testing.T) {
	_, svc := seeded(t)
	ctx := context.Background()

	id, err := svc.AddMenu(ctx, model.Menu{TenantID: 5, Name: "Teh Tarik", Price: decimal.NewFromInt(8000), Category: "Minuman"})
	require.NoError(t, err)
	assert.Equal(t, int64(16), id)

	_, err = svc.AddMenu(ctx, model.Menu{TenantID: 99, Name: "Ghost", Price: decimal.NewFromInt(1000), Category: "Snack"})
	assert.True(t, errs.Is(err, errs.ConstraintViolation), "got %v", err)

	_, err = svc.AddMenu(ctx, model.Menu{TenantID: 5, Name: "Gratis", Price: decimal.Zero, Category: "Snack"})
	assert.True(t, errs.Is(err, errs.InvalidArgument))

	_, err = svc.AddTenant(ctx, model.Tenant{Name: " "})
	assert.True(t, errs.Is(err, errs.InvalidArgument))
}

func TestSetPrice(t *testing.T) {
	_, svc := seeded(t)
	ctx := context.Background()

	m, err := svc.SetPrice(ctx, 1, decimal.NewFromInt(17000))
	require.NoError(t, err)
	assert.Equal(t, "17000", m.Price.String())

	stored, err := svc.GetMenu(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "17000", stored.Price.String())

	_, err = svc.SetPrice(ctx, 999, decimal.NewFromInt(1))
	assert.True(t, errs.Is(err, errs.NotFound))
	_, err = svc.SetPrice(ctx, 1, decimal.NewFromInt(-5))
	assert.True(t, errs.Is(err, errs.InvalidArgument))
}

func TestDeleteTenant_CascadesMenus(t *testing.T) {
	s, svc := seeded(t)
	ctx := context.Background()

	require.NoError(t, svc.DeleteTenant(ctx, 5))

	n, err := s.Count(ctx, store.TableMenus, store.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Makanan Utama", "Snack"}, cats)

	assert.True(t, errs.Is(svc.DeleteTenant(ctx, 5), errs.NotFound))
	assert.True(t, errs.Is(svc.DeleteMenu(ctx, 15), errs.NotFound))
}

func TestMenusByTenantQuery_PushesOnPriceChange(t *testing.T) {
	s, svc := seeded(t)
	ctx := context.Background()

	e := liveq.New(s)
	defer e.Close()

	pushes := make(chan liveq.Update, 4)
	_, sub, err := e.Subscribe(ctx, svc.MenusByTenantQuery(1), func(u liveq.Update) { pushes <- u })
	require.NoError(t, err)
	defer sub.Unsubscribe()

	tenants := make(chan liveq.Update, 4)
	_, tsub, err := e.Subscribe(ctx, svc.TenantsQuery(), func(u liveq.Update) { tenants <- u })
	require.NoError(t, err)
	defer tsub.Unsubscribe()

	_, err = svc.SetPrice(ctx, 2, decimal.NewFromInt(13000))
	require.NoError(t, err)

	select {
	case u := <-pushes:
		menus := u.Value.([]model.Menu)
		require.Len(t, menus, 3)
		assert.Equal(t, "Soto Ayam", menus[2].Name)
		assert.Equal(t, "13000", menus[2].Price.String())
	case <-time.After(2 * time.Second):
		t.Fatal("no push after price change")
	}

	// Editing another tenant's menu re-evaluates but yields the same list.
	_, err = svc.SetPrice(ctx, 15, decimal.NewFromInt(6500))
	require.NoError(t, err)
	select {
	case u := <-pushes:
		t.Fatalf("unexpected push: %+v", u)
	case <-time.After(50 * time.Millisecond):
	}

	select {
	case u := <-tenants:
		t.Fatalf("tenant list should not change on menu edits: %+v", u)
	default:
	}
}
