// Package querysql compiles queryir queries to parameterized SQLite SQL.
package querysql

import (
	"fmt"
	"strings"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/ir"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/queryir"
)

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// Every row query ends with an ORDER BY that includes the primary key, so two
// evaluations over the same data return rows in the same order. Values are
// always bound as parameters, never interpolated.
type SQLCompiler struct {
	// Params holds the values for Param and Contains predicates.
	Params map[string]any
}

// NewSQLCompiler creates a compiler with the given parameter values.
func NewSQLCompiler(params map[string]any) *SQLCompiler {
	if params == nil {
		params = make(map[string]any)
	}
	return &SQLCompiler{Params: params}
}

// Compile validates q and converts it to SQL.
// Returns (sql, args, error).
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if err := queryir.Validate(q); err != nil {
		return "", nil, fmt.Errorf("invalid query: %w", err)
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	case queryir.Join:
		return c.compileJoin(query)
	case *queryir.Join:
		return c.compileJoin(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// Compile is shorthand for NewSQLCompiler(params).Compile(q).
func Compile(q queryir.Query, params map[string]any) (string, []any, error) {
	return NewSQLCompiler(params).Compile(q)
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	switch {
	case q.Count:
		b.WriteString("COUNT(*)")
	case q.Distinct:
		b.WriteString("DISTINCT ")
		b.WriteString(columnList(q.Columns, ""))
	default:
		b.WriteString(columnList(q.Columns, ""))
	}
	b.WriteString(" FROM ")
	b.WriteString(q.From)

	where, args, err := c.compilePredicate(q.Filter, "")
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	if !q.Count {
		b.WriteString(" ORDER BY ")
		b.WriteString(orderClause(q, ""))
	}
	return b.String(), args, nil
}

func (c *SQLCompiler) compileJoin(j queryir.Join) (string, []any, error) {
	left, right := j.Left.From, j.Right.From

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(columnList(j.Left.Columns, left))
	if len(j.Right.Columns) > 0 {
		b.WriteString(", ")
		b.WriteString(columnList(j.Right.Columns, right))
	}
	fmt.Fprintf(&b, " FROM %s INNER JOIN %s ON %s.%s = %s.%s",
		left, right, left, j.On.Left, right, j.On.Right)

	var conds []string
	var args []any
	for _, side := range []queryir.Select{j.Left, j.Right} {
		sql, sideArgs, err := c.compilePredicate(side.Filter, side.From)
		if err != nil {
			return "", nil, fmt.Errorf("compile %s filter: %w", side.From, err)
		}
		if sql != "" {
			conds = append(conds, sql)
			args = append(args, sideArgs...)
		}
	}
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	var terms []string
	for _, o := range j.Left.OrderBy {
		terms = append(terms, orderTerm(o, left))
	}
	for _, o := range j.Right.OrderBy {
		terms = append(terms, orderTerm(o, right))
	}
	terms = append(terms, left+".id ASC")
	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(terms, ", "))

	return b.String(), args, nil
}

func columnList(cols []queryir.Column, table string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		field := qualify(col.Field, table)
		switch {
		case col.As != "":
			parts[i] = field + " AS " + col.As
		case table != "":
			parts[i] = field + " AS " + col.Field
		default:
			parts[i] = field
		}
	}
	return strings.Join(parts, ", ")
}

// orderClause appends the id tiebreaker unless the select is distinct or
// already orders by id.
func orderClause(q queryir.Select, table string) string {
	terms := make([]string, 0, len(q.OrderBy)+1)
	hasID := false
	for _, o := range q.OrderBy {
		terms = append(terms, orderTerm(o, table))
		if o.Field == "id" {
			hasID = true
		}
	}
	if q.Distinct {
		if len(terms) == 0 {
			for _, col := range q.Columns {
				terms = append(terms, col.Name()+" ASC")
			}
		}
		return strings.Join(terms, ", ")
	}
	if !hasID {
		terms = append(terms, qualify("id", table)+" ASC")
	}
	return strings.Join(terms, ", ")
}

func orderTerm(o queryir.Order, table string) string {
	if o.Desc {
		return qualify(o.Field, table) + " DESC"
	}
	return qualify(o.Field, table) + " ASC"
}

func qualify(field, table string) string {
	if table == "" {
		return field
	}
	return table + "." + field
}

// compilePredicate returns "" for an absent or empty predicate.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate, table string) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "", nil, nil
	case queryir.Equals:
		v, err := irValueToParam(pred.Value)
		if err != nil {
			return "", nil, fmt.Errorf("field %s: %w", pred.Field, err)
		}
		return qualify(pred.Field, table) + " = ?", []any{v}, nil
	case *queryir.Equals:
		return c.compilePredicate(*pred, table)
	case queryir.Param:
		v, ok := c.Params[pred.Name]
		if !ok {
			return "", nil, fmt.Errorf("missing parameter %q", pred.Name)
		}
		return qualify(pred.Field, table) + " = ?", []any{v}, nil
	case *queryir.Param:
		return c.compilePredicate(*pred, table)
	case queryir.Contains:
		v, ok := c.Params[pred.Name]
		if !ok {
			return "", nil, fmt.Errorf("missing parameter %q", pred.Name)
		}
		s, ok := v.(string)
		if !ok {
			return "", nil, fmt.Errorf("parameter %q must be a string, got %T", pred.Name, v)
		}
		return qualify(pred.Field, table) + ` LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(s) + "%"}, nil
	case *queryir.Contains:
		return c.compilePredicate(*pred, table)
	case queryir.And:
		var parts []string
		var args []any
		for _, sub := range pred.Predicates {
			sql, subArgs, err := c.compilePredicate(sub, table)
			if err != nil {
				return "", nil, err
			}
			if sql == "" {
				continue
			}
			parts = append(parts, sql)
			args = append(args, subArgs...)
		}
		return strings.Join(parts, " AND "), args, nil
	case *queryir.And:
		return c.compilePredicate(*pred, table)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// irValueToParam converts an ir.IRValue to a Go value for a SQL parameter.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRBool:
		return bool(val), nil
	case ir.IRNull:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported value for SQL parameter: %T", v)
	}
}
