package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Accepts(t *testing.T) {
	require.NoError(t, Validate(pricedCart()))
	require.NoError(t, Validate(Select{From: "carts", Count: true, Filter: Param{Field: "user_id", Name: "user_id"}}))
	require.NoError(t, Validate(&Select{From: "menus", Columns: Cols("category"), Distinct: true, OrderBy: []Order{Asc("category")}}))
}

func TestValidate_RejectsInjection(t *testing.T) {
	err := Validate(Select{From: "menus; DROP TABLE users", Columns: Cols("id")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select.from")
}

func TestValidate_RequiresColumns(t *testing.T) {
	err := Validate(Select{From: "menus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "explicit columns required")
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	j := pricedCart()
	j.On.Left = "menu id"
	j.Right.Columns = append(j.Right.Columns, Column{Field: "name", As: "1bad"})
	j.Left.Count = true

	err := Validate(j)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "on.left")
	assert.Contains(t, err.Error(), "right.columns[1].as")
	assert.Contains(t, err.Error(), "count is not supported inside a join")
}

func TestValidate_CountDistinctExclusive(t *testing.T) {
	err := Validate(Select{From: "menus", Columns: Cols("category"), Count: true, Distinct: true})
	assert.Error(t, err)
}

func TestValidate_Nil(t *testing.T) {
	assert.Error(t, Validate(nil))
}
