package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/ir"
)

func pricedCart() Join {
	return Join{
		Left: Select{
			From:    "carts",
			Columns: Cols("id", "quantity"),
			Filter:  Param{Field: "user_id", Name: "user_id"},
		},
		Right: Select{
			From:    "menus",
			Columns: []Column{{Field: "price", As: "unit_price"}},
			Filter:  And{Predicates: []Predicate{Contains{Field: "name", Name: "q"}, Param{Field: "tenant_id", Name: "user_id"}}},
		},
		On: On{Left: "menu_id", Right: "id"},
	}
}

func TestTables(t *testing.T) {
	assert.Equal(t, []string{"menus"}, Tables(Select{From: "menus"}))
	assert.Equal(t, []string{"carts", "menus"}, Tables(pricedCart()))
	j := pricedCart()
	assert.Equal(t, []string{"carts", "menus"}, Tables(&j))
	assert.Nil(t, Tables(nil))
}

func TestParams_DedupedInOrder(t *testing.T) {
	assert.Equal(t, []string{"user_id", "q"}, Params(pricedCart()))
	assert.Empty(t, Params(Select{From: "tenants", Filter: Equals{Field: "id", Value: ir.IRInt(1)}}))
}

func TestColumn_Name(t *testing.T) {
	assert.Equal(t, "price", Column{Field: "price"}.Name())
	assert.Equal(t, "unit_price", Column{Field: "price", As: "unit_price"}.Name())
}
