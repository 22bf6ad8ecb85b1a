package queryir

import "github.com/andinnnputrii/FastKantin-MobileApp/internal/ir"

// Query is a sealed interface implemented by Select and Join.
type Query interface {
	queryNode()
}

// Predicate is a sealed interface for filter conditions.
type Predicate interface {
	predicateNode()
}

// Select reads rows from one table.
//
//	SELECT <Columns> FROM <From> WHERE <Filter> ORDER BY <OrderBy>, id
//
// With Count set the column list is replaced by COUNT(*) and no ordering is
// emitted. With Distinct set the id tiebreaker is omitted, since it would
// defeat de-duplication.
type Select struct {
	From     string
	Columns  []Column
	Filter   Predicate // nil = all rows
	OrderBy  []Order
	Distinct bool
	Count    bool
}

func (Select) queryNode() {}

// Join is an inner equi-join of two selects.
//
//	SELECT <Left.Columns>, <Right.Columns> FROM <Left.From>
//	INNER JOIN <Right.From> ON <Left.From>.<On.Left> = <Right.From>.<On.Right>
//	WHERE <Left.Filter> AND <Right.Filter>
//	ORDER BY <Left.OrderBy>, <Right.OrderBy>, <Left.From>.id
//
// Field names inside Left and Right are qualified with their table.
type Join struct {
	Left  Select
	Right Select
	On    On
}

func (Join) queryNode() {}

// On is the equality condition of a Join.
type On struct {
	Left  string // field of Join.Left
	Right string // field of Join.Right
}

// Column selects a field, optionally renamed.
type Column struct {
	Field string
	As    string // empty = Field
}

// Name returns the result column name.
func (c Column) Name() string {
	if c.As != "" {
		return c.As
	}
	return c.Field
}

// Cols builds a column list without renames.
func Cols(fields ...string) []Column {
	cols := make([]Column, len(fields))
	for i, f := range fields {
		cols[i] = Column{Field: f}
	}
	return cols
}

// Order is one ORDER BY term.
type Order struct {
	Field string
	Desc  bool
}

// Asc and Desc build ordering terms.
func Asc(field string) Order  { return Order{Field: field} }
func Desc(field string) Order { return Order{Field: field, Desc: true} }

// Equals compares a field to a literal.
type Equals struct {
	Field string
	Value ir.IRValue
}

func (Equals) predicateNode() {}

// Param compares a field to a named parameter supplied at compile time.
type Param struct {
	Field string
	Name  string
}

func (Param) predicateNode() {}

// Contains matches rows whose field contains the named parameter as a
// substring. Matching is case-insensitive for ASCII.
type Contains struct {
	Field string
	Name  string
}

func (Contains) predicateNode() {}

// And is a conjunction. An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Tables returns the tables a query reads, in query order without duplicates.
func Tables(q Query) []string {
	switch query := q.(type) {
	case Select:
		return []string{query.From}
	case *Select:
		return []string{query.From}
	case Join:
		return joinTables(query)
	case *Join:
		return joinTables(*query)
	}
	return nil
}

func joinTables(j Join) []string {
	if j.Left.From == j.Right.From {
		return []string{j.Left.From}
	}
	return []string{j.Left.From, j.Right.From}
}

// Params returns the parameter names a query references, in order of appearance.
func Params(q Query) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(p Predicate) {
		walkPredicate(p, func(name string) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		})
	}
	switch query := q.(type) {
	case Select:
		add(query.Filter)
	case *Select:
		add(query.Filter)
	case Join:
		add(query.Left.Filter)
		add(query.Right.Filter)
	case *Join:
		add(query.Left.Filter)
		add(query.Right.Filter)
	}
	return names
}

func walkPredicate(p Predicate, visit func(name string)) {
	switch pred := p.(type) {
	case Param:
		visit(pred.Name)
	case *Param:
		visit(pred.Name)
	case Contains:
		visit(pred.Name)
	case *Contains:
		visit(pred.Name)
	case And:
		for _, sub := range pred.Predicates {
			walkPredicate(sub, visit)
		}
	case *And:
		for _, sub := range pred.Predicates {
			walkPredicate(sub, visit)
		}
	}
}
