package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/shopspring/decimal"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
)

//go:embed schema.cue
var schemaCUE []byte

//go:embed catalog.cue
var defaultCUE []byte

// Catalog is a compiled catalog file. IDs are unset until seeded.
type Catalog struct {
	Tenants []TenantEntry
}

// TenantEntry is a tenant with its menus.
type TenantEntry struct {
	Tenant model.Tenant
	Menus  []model.Menu
}

// MenuCount returns the number of menus across all tenants.
func (c *Catalog) MenuCount() int {
	n := 0
	for _, t := range c.Tenants {
		n += len(t.Menus)
	}
	return n
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Compile(defaultCUE, "catalog.cue")
}

// CompileFile reads and compiles a catalog file.
func CompileFile(path string) (*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Compile(src, path)
}

// Compile validates src against the catalog schema and extracts it.
func Compile(src []byte, filename string) (*Catalog, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("catalog schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v = schema.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	tenantsVal := v.LookupPath(cue.ParsePath("tenants"))
	iter, err := tenantsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	cat := &Catalog{}
	for iter.Next() {
		entry, err := parseTenant(iter.Value())
		if err != nil {
			return nil, err
		}
		cat.Tenants = append(cat.Tenants, entry)
	}
	if len(cat.Tenants) == 0 {
		return nil, &CompileError{Field: "tenants", Message: "at least one tenant is required", Pos: tenantsVal.Pos()}
	}
	return cat, nil
}

func parseTenant(v cue.Value) (TenantEntry, error) {
	var (
		e   TenantEntry
		err error
	)
	if e.Tenant.Name, err = stringField(v, "name"); err != nil {
		return e, err
	}
	if e.Tenant.Description, err = stringField(v, "description"); err != nil {
		return e, err
	}
	if e.Tenant.Location, err = stringField(v, "location"); err != nil {
		return e, err
	}
	if e.Tenant.ImageRef, err = stringField(v, "image"); err != nil {
		return e, err
	}

	iter, err := v.LookupPath(cue.ParsePath("menus")).List()
	if err != nil {
		return e, formatCUEError(err)
	}
	for iter.Next() {
		m, err := parseMenu(iter.Value())
		if err != nil {
			return e, err
		}
		e.Menus = append(e.Menus, m)
	}
	return e, nil
}

func parseMenu(v cue.Value) (model.Menu, error) {
	var (
		m   model.Menu
		err error
	)
	if m.Name, err = stringField(v, "name"); err != nil {
		return m, err
	}
	if m.Description, err = stringField(v, "description"); err != nil {
		return m, err
	}
	if m.Category, err = stringField(v, "category"); err != nil {
		return m, err
	}
	if m.ImageRef, err = stringField(v, "image"); err != nil {
		return m, err
	}

	// The number is read through its JSON form so decimal prices keep
	// their exact digits.
	priceVal := v.LookupPath(cue.ParsePath("price"))
	raw, err := priceVal.MarshalJSON()
	if err != nil {
		return m, formatCUEError(err)
	}
	if m.Price, err = decimal.NewFromString(string(raw)); err != nil {
		return m, &CompileError{Field: "price", Message: err.Error(), Pos: priceVal.Pos()}
	}
	return m, nil
}

func stringField(v cue.Value, name string) (string, error) {
	s, err := v.LookupPath(cue.ParsePath(name)).String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError is a catalog error with its source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	list := errors.Errors(err)
	if len(list) == 0 {
		return err
	}

	first := list[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
