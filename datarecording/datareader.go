package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"
)

// A Reader reads back the tables that a DataRecorder wrote into a SQLite
// file.
type Reader struct {
	db *sql.DB
}

// Filter narrows the rows returned by ReadTable. Zero fields do not filter.
type Filter struct {
	// Where is a condition without the WHERE keyword, such as "Error != ?".
	Where string
	Args  []any

	// OrderBy lists columns without the ORDER BY keywords.
	OrderBy string

	Limit int
}

// NewReader opens a recorded SQLite file. Unlike the sqlite3 driver, it does
// not create missing files.
func NewReader(filename string) (*Reader, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a Reader on an open SQLite database.
func NewReaderWithDB(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Tables returns the names of the tables in the database, sorted.
func (r *Reader) Tables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		tables = append(tables, name)
	}

	return tables, rows.Err()
}

// CountRows returns the number of rows of a table.
func (r *Reader) CountRows(ctx context.Context, table string) (int, error) {
	var n int

	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)

	return n, err
}

// Close closes the database.
func (r *Reader) Close() error {
	return r.db.Close()
}

// ReadTable reads the rows of a table into values of T. T is the struct that
// the rows were recorded from; its exported fields name the columns read.
func ReadTable[T any](
	ctx context.Context,
	r *Reader,
	table string,
	filter Filter,
) ([]T, error) {
	var sample T
	if !structs.IsStruct(sample) {
		return nil, fmt.Errorf("cannot read table %s into %T", table, sample)
	}

	var columns []string

	for _, f := range structs.Fields(sample) {
		if f.IsExported() {
			columns = append(columns, f.Name())
		}
	}

	rows, err := r.db.QueryContext(ctx,
		selectQuery(table, columns, filter), filter.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T

	for rows.Next() {
		var entry T

		v := reflect.ValueOf(&entry).Elem()
		targets := make([]any, len(columns))

		for i, c := range columns {
			targets[i] = v.FieldByName(c).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("table %s: %w", table, err)
		}

		out = append(out, entry)
	}

	return out, rows.Err()
}

func selectQuery(table string, columns []string, filter Filter) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(columns, ", "), table)

	if filter.Where != "" {
		b.WriteString(" WHERE " + filter.Where)
	}

	if filter.OrderBy != "" {
		b.WriteString(" ORDER BY " + filter.OrderBy)
	}

	if filter.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", filter.Limit)
	}

	return b.String()
}
