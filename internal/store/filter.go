// Package store is the record store adapter: generic insert, get-one, update,
// delete and query primitives over a single table, with AND-ed filters,
// ordering, offset/limit ranges and counts. Identifiers are validated and
// quoted; values are always bound parameters rebound for the active driver.
package store

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateIdentifier ensures a table or column name is safe to splice into SQL.
func ValidateIdentifier(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(name) > 63 {
		return fmt.Errorf("identifier too long (max 63 chars): %q", name)
	}
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("invalid identifier %q: must match [a-zA-Z_][a-zA-Z0-9_]*", name)
	}
	return nil
}

func quote(name string) string {
	return `"` + name + `"`
}

type Op string

const (
	OpEq  Op = "="
	OpNeq Op = "<>"
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
	// OpEqFold compares case-insensitively.
	OpEqFold Op = "EQFOLD"
)

// Condition is one column comparison. A nil Value with OpEq or OpNeq becomes
// IS NULL / IS NOT NULL.
type Condition struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Condition { return Condition{column, OpEq, value} }
func Neq(column string, value any) Condition { return Condition{column, OpNeq, value} }
func Lt(column string, value any) Condition { return Condition{column, OpLt, value} }
func Lte(column string, value any) Condition { return Condition{column, OpLte, value} }
func Gt(column string, value any) Condition { return Condition{column, OpGt, value} }
func Gte(column string, value any) Condition { return Condition{column, OpGte, value} }
func EqFold(column string, value any) Condition { return Condition{column, OpEqFold, value} }

// Filter is a conjunction of conditions. The empty filter matches every row.
type Filter []Condition

func Where(conds ...Condition) Filter {
	return Filter(conds)
}

// And returns a new filter with extra conditions appended.
func (f Filter) And(conds ...Condition) Filter {
	out := make(Filter, 0, len(f)+len(conds))
	out = append(out, f...)
	return append(out, conds...)
}

// build renders the WHERE clause with ? placeholders.
func (f Filter) build() (string, []any, error) {
	if len(f) == 0 {
		return "", nil, nil
	}

	parts := make([]string, 0, len(f))
	args := make([]any, 0, len(f))
	for _, c := range f {
		if err := ValidateIdentifier(c.Column); err != nil {
			return "", nil, err
		}
		col := quote(c.Column)

		switch c.Op {
		case OpEq, OpNeq:
			if c.Value == nil {
				if c.Op == OpEq {
					parts = append(parts, col+" IS NULL")
				} else {
					parts = append(parts, col+" IS NOT NULL")
				}
				continue
			}
			parts = append(parts, fmt.Sprintf("%s %s ?", col, c.Op))
		case OpLt, OpLte, OpGt, OpGte:
			parts = append(parts, fmt.Sprintf("%s %s ?", col, c.Op))
		case OpEqFold:
			parts = append(parts, fmt.Sprintf("LOWER(%s) = LOWER(?)", col))
		default:
			return "", nil, fmt.Errorf("unsupported operator %q", c.Op)
		}
		args = append(args, c.Value)
	}

	return "WHERE " + strings.Join(parts, " AND "), args, nil
}

// Order is a single ORDER BY directive.
type Order struct {
	Column string
	Desc   bool
}

func Asc(column string) Order { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Desc: true} }

func buildOrder(orders []Order) (string, error) {
	if len(orders) == 0 {
		return "", nil
	}
	parts := make([]string, len(orders))
	for i, o := range orders {
		if err := ValidateIdentifier(o.Column); err != nil {
			return "", fmt.Errorf("invalid order column: %w", err)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts[i] = quote(o.Column) + " " + dir
	}
	return "ORDER BY " + strings.Join(parts, ", "), nil
}

func buildColumns(columns []string) (string, error) {
	if len(columns) == 0 {
		return "*", nil
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		if err := ValidateIdentifier(c); err != nil {
			return "", err
		}
		quoted[i] = quote(c)
	}
	return strings.Join(quoted, ", "), nil
}

// Values maps column names to values for inserts and patches.
type Values map[string]any

// sortedColumns returns the keys in a stable order so generated SQL is
// deterministic.
func (v Values) sortedColumns() ([]string, error) {
	cols := make([]string, 0, len(v))
	for c := range v {
		if err := ValidateIdentifier(c); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols, nil
}
