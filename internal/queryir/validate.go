package queryir

import (
	"errors"
	"fmt"
	"regexp"
)

// validIdentifier matches table, column and parameter names. Identifiers are
// interpolated into SQL, so anything else is rejected.
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidationError describes one problem with a query.
type ValidationError struct {
	Path    string // e.g. "left.columns[1]"
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate checks a query against the supported fragment.
// All problems are reported, joined with errors.Join.
func Validate(q Query) error {
	var errs []error
	switch query := q.(type) {
	case Select:
		errs = validateSelect("select", query, errs)
	case *Select:
		errs = validateSelect("select", *query, errs)
	case Join:
		errs = validateJoin(query, errs)
	case *Join:
		errs = validateJoin(*query, errs)
	case nil:
		errs = append(errs, ValidationError{Path: "query", Message: "nil query"})
	default:
		errs = append(errs, ValidationError{Path: "query", Message: fmt.Sprintf("unsupported query type %T", q)})
	}
	return errors.Join(errs...)
}

func validateJoin(j Join, errs []error) []error {
	errs = validateSelect("left", j.Left, errs)
	errs = validateSelect("right", j.Right, errs)
	if j.Left.Count || j.Right.Count {
		errs = append(errs, ValidationError{Path: "join", Message: "count is not supported inside a join"})
	}
	if j.Left.Distinct || j.Right.Distinct {
		errs = append(errs, ValidationError{Path: "join", Message: "distinct is not supported inside a join"})
	}
	errs = checkIdent("on.left", j.On.Left, errs)
	errs = checkIdent("on.right", j.On.Right, errs)
	return errs
}

func validateSelect(path string, s Select, errs []error) []error {
	errs = checkIdent(path+".from", s.From, errs)

	if s.Count && s.Distinct {
		errs = append(errs, ValidationError{Path: path, Message: "count and distinct are exclusive"})
	}
	if !s.Count && len(s.Columns) == 0 {
		errs = append(errs, ValidationError{Path: path + ".columns", Message: "explicit columns required"})
	}
	for i, c := range s.Columns {
		errs = checkIdent(fmt.Sprintf("%s.columns[%d]", path, i), c.Field, errs)
		if c.As != "" {
			errs = checkIdent(fmt.Sprintf("%s.columns[%d].as", path, i), c.As, errs)
		}
	}
	for i, o := range s.OrderBy {
		errs = checkIdent(fmt.Sprintf("%s.order_by[%d]", path, i), o.Field, errs)
	}
	return validatePredicate(path+".filter", s.Filter, errs)
}

func validatePredicate(path string, p Predicate, errs []error) []error {
	switch pred := p.(type) {
	case nil:
	case Equals:
		errs = checkIdent(path, pred.Field, errs)
		if pred.Value == nil {
			errs = append(errs, ValidationError{Path: path, Message: "equals requires a value"})
		}
	case *Equals:
		return validatePredicate(path, *pred, errs)
	case Param:
		errs = checkIdent(path, pred.Field, errs)
		errs = checkIdent(path+".param", pred.Name, errs)
	case *Param:
		return validatePredicate(path, *pred, errs)
	case Contains:
		errs = checkIdent(path, pred.Field, errs)
		errs = checkIdent(path+".param", pred.Name, errs)
	case *Contains:
		return validatePredicate(path, *pred, errs)
	case And:
		for i, sub := range pred.Predicates {
			errs = validatePredicate(fmt.Sprintf("%s.and[%d]", path, i), sub, errs)
		}
	case *And:
		return validatePredicate(path, *pred, errs)
	default:
		errs = append(errs, ValidationError{Path: path, Message: fmt.Sprintf("unsupported predicate %T", p)})
	}
	return errs
}

func checkIdent(path, name string, errs []error) []error {
	if !validIdentifier.MatchString(name) {
		return append(errs, ValidationError{Path: path, Message: fmt.Sprintf("invalid identifier %q", name)})
	}
	return errs
}
