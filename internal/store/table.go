package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doctrot/site-server-go/internal/database"
)

// ErrUnfiltered is returned when an update or delete is attempted without a
// filter. Whole-table writes are never intended.
var ErrUnfiltered = errors.New("store: update and delete require a filter")

// Query describes a read: filter, ordering, range and an optional total count.
// A zero Limit means no range is applied.
type Query struct {
	Filter    Filter
	OrderBy   []Order
	Offset    int
	Limit     int
	Columns   []string
	WithCount bool
}

// Page holds query results. Count is the number of rows matching the filter
// before the range is applied, and is only set when Query.WithCount is true.
type Page[T any] struct {
	Records []T
	Count   int
}

// Table is a typed handle on one table. T must carry db tags matching the
// table's columns.
type Table[T any] struct {
	db   database.DBTX
	name string
}

func NewTable[T any](db database.DBTX, name string) *Table[T] {
	if err := ValidateIdentifier(name); err != nil {
		panic(err)
	}
	return &Table[T]{db: db, name: name}
}

// WithTx returns a handle on the same table bound to tx.
func (t *Table[T]) WithTx(tx database.DBTX) *Table[T] {
	return &Table[T]{db: tx, name: t.name}
}

func (t *Table[T]) Name() string {
	return t.name
}

// Insert writes one row and returns it as stored, including generated
// columns.
func (t *Table[T]) Insert(ctx context.Context, values Values) (*T, error) {
	cols, err := values.sortedColumns()
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("store: insert into %s without values", t.name)
	}

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
		placeholders[i] = "?"
		args[i] = values[c]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		quote(t.name), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	var row T
	if err := t.db.GetContext(ctx, &row, t.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", t.name, err)
	}
	return &row, nil
}

// GetOne returns the first row matching filter, or nil when none does.
func (t *Table[T]) GetOne(ctx context.Context, filter Filter, orderBy ...Order) (*T, error) {
	where, args, err := filter.build()
	if err != nil {
		return nil, err
	}
	order, err := buildOrder(orderBy)
	if err != nil {
		return nil, err
	}

	query := joinSQL("SELECT * FROM "+quote(t.name), where, order, "LIMIT 1")

	var row T
	err = t.db.GetContext(ctx, &row, t.db.Rebind(query), args...)
	result, err := HandleNotFound(&row, err)
	if err != nil {
		return nil, fmt.Errorf("get from %s: %w", t.name, err)
	}
	return result, nil
}

// Update applies patch to every row matching filter and returns the number
// of rows changed.
func (t *Table[T]) Update(ctx context.Context, filter Filter, patch Values) (int64, error) {
	if len(filter) == 0 {
		return 0, ErrUnfiltered
	}
	cols, err := patch.sortedColumns()
	if err != nil {
		return 0, err
	}
	if len(cols) == 0 {
		return 0, fmt.Errorf("store: update of %s without values", t.name)
	}

	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(filter))
	for i, c := range cols {
		sets[i] = quote(c) + " = ?"
		args = append(args, patch[c])
	}

	where, whereArgs, err := filter.build()
	if err != nil {
		return 0, err
	}
	args = append(args, whereArgs...)

	query := joinSQL("UPDATE "+quote(t.name)+" SET "+strings.Join(sets, ", "), where)
	result, err := t.db.ExecContext(ctx, t.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", t.name, err)
	}
	return result.RowsAffected()
}

// Delete removes every row matching filter and returns the number removed.
func (t *Table[T]) Delete(ctx context.Context, filter Filter) (int64, error) {
	if len(filter) == 0 {
		return 0, ErrUnfiltered
	}
	where, args, err := filter.build()
	if err != nil {
		return 0, err
	}

	query := joinSQL("DELETE FROM "+quote(t.name), where)
	result, err := t.db.ExecContext(ctx, t.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", t.name, err)
	}
	return result.RowsAffected()
}

// Query runs a filtered, ordered, ranged read.
func (t *Table[T]) Query(ctx context.Context, q Query) (*Page[T], error) {
	if q.Offset < 0 || q.Limit < 0 {
		return nil, fmt.Errorf("store: negative range (offset %d, limit %d)", q.Offset, q.Limit)
	}
	if q.Offset > 0 && q.Limit == 0 {
		return nil, fmt.Errorf("store: offset requires a limit")
	}

	columns, err := buildColumns(q.Columns)
	if err != nil {
		return nil, err
	}
	where, args, err := q.Filter.build()
	if err != nil {
		return nil, err
	}
	order, err := buildOrder(q.OrderBy)
	if err != nil {
		return nil, err
	}

	var limit string
	if q.Limit > 0 {
		limit = fmt.Sprintf("LIMIT %d OFFSET %d", q.Limit, q.Offset)
	}

	query := joinSQL("SELECT "+columns+" FROM "+quote(t.name), where, order, limit)

	records := []T{}
	if err := t.db.SelectContext(ctx, &records, t.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query %s: %w", t.name, err)
	}

	page := &Page[T]{Records: records}
	if q.WithCount {
		count, err := t.Count(ctx, q.Filter)
		if err != nil {
			return nil, err
		}
		page.Count = count
	}
	return page, nil
}

// Count returns the number of rows matching filter.
func (t *Table[T]) Count(ctx context.Context, filter Filter) (int, error) {
	where, args, err := filter.build()
	if err != nil {
		return 0, err
	}

	query := joinSQL("SELECT COUNT(*) FROM "+quote(t.name), where)
	var count int
	if err := t.db.GetContext(ctx, &count, t.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.name, err)
	}
	return count, nil
}

// Distinct returns the distinct non-null values of column, sorted ascending.
func (t *Table[T]) Distinct(ctx context.Context, column string, filter Filter) ([]string, error) {
	if err := ValidateIdentifier(column); err != nil {
		return nil, err
	}
	where, args, err := filter.build()
	if err != nil {
		return nil, err
	}

	col := quote(column)
	notNull := col + " IS NOT NULL"
	if where == "" {
		where = "WHERE " + notNull
	} else {
		where += " AND " + notNull
	}

	query := joinSQL("SELECT DISTINCT "+col+" FROM "+quote(t.name), where, "ORDER BY "+col+" ASC")
	values := []string{}
	if err := t.db.SelectContext(ctx, &values, t.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", t.name, column, err)
	}
	return values, nil
}

func joinSQL(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// HandleNotFound converts sql.ErrNoRows to a nil result without error. A
// missing row is not an error condition for Find/Get operations.
//
// Usage:
//
//	var item model.Item
//	err := db.GetContext(ctx, &item, query, args...)
//	return HandleNotFound(&item, err)
func HandleNotFound[T any](result *T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
