package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
)

// Filter selects rows of a table. Every entry of Equal must match.
type Filter struct {
	Equal map[string]any

	// OrderBy is a column name. Rows come in insertion order when empty.
	OrderBy string

	// Limit caps the number of rows returned. 0 returns every row.
	Limit int
}

// Reader reads a database written by SQLiteWriter.
type Reader struct {
	db *sql.DB
}

// OpenReader opens an existing recording.
func OpenReader(filename string) (*Reader, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	return &Reader{db: db}, nil
}

// Tables lists the tables of the recording, sorted.
func (r *Reader) Tables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	sort.Strings(names)

	return names, rows.Err()
}

// Close closes the database.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Select reads the rows of table that pass f into values of T, whose
// exported fields name the columns. It also returns how many rows pass f
// without the limit.
func Select[T any](
	ctx context.Context,
	r *Reader,
	table string,
	f Filter,
) ([]T, int, error) {
	columns := columnsOf(reflect.TypeOf((*T)(nil)).Elem())

	where, args, err := f.where(table, columns)
	if err != nil {
		return nil, 0, err
	}

	var total int

	err = r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+table+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT " + strings.Join(columns, ", ") + " FROM " + table + where
	if f.OrderBy != "" {
		query += " ORDER BY " + f.OrderBy
	}

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []T

	for rows.Next() {
		var v T

		val := reflect.ValueOf(&v).Elem()
		targets := make([]any, len(columns))

		for i, c := range columns {
			targets[i] = val.FieldByName(c).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, 0, err
		}

		results = append(results, v)
	}

	return results, total, rows.Err()
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("rows must be read into structs, not %s", t))
	}

	var columns []string

	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			columns = append(columns, t.Field(i).Name)
		}
	}

	return columns
}

// where builds the WHERE clause. Column names are checked against the row
// type since they cannot be bound as arguments.
func (f Filter) where(table string, columns []string) (string, []any, error) {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}

	if !isIdent(table) {
		return "", nil, fmt.Errorf("bad table name %q", table)
	}

	if f.OrderBy != "" && !known[f.OrderBy] {
		return "", nil, fmt.Errorf("table %s has no column %q", table, f.OrderBy)
	}

	keys := make([]string, 0, len(f.Equal))
	for k := range f.Equal {
		if !known[k] {
			return "", nil, fmt.Errorf("table %s has no column %q", table, k)
		}

		keys = append(keys, k)
	}

	if len(keys) == 0 {
		return "", nil, nil
	}

	sort.Strings(keys)

	conds := make([]string, len(keys))
	args := make([]any, len(keys))

	for i, k := range keys {
		conds[i] = k + " = ?"
		args[i] = f.Equal[k]
	}

	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for _, c := range s {
		ok := c == '_' ||
			(c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9')
		if !ok {
			return false
		}
	}

	return true
}
