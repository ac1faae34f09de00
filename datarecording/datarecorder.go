// Package datarecording stores flat Go structs in SQL tables.
package datarecording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/structs"

	// Need to use MySQL connections.
	_ "github.com/go-sql-driver/mysql"
	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DefaultBatchSize is the number of buffered entries that triggers a flush.
const DefaultBatchSize = 100000

// DataRecorder is a backend that can record and store data
type DataRecorder interface {
	// CreateTable creates a new table whose columns are the exported fields
	// of sampleEntry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers an entry for a table that already exists. The entry
	// must have the type of the table's sample entry.
	InsertData(tableName string, entry any)

	// ListTables returns the names of the tables created by the recorder, in
	// creation order.
	ListTables() []string

	// Flush writes all the buffered entries into the database.
	Flush()

	// Close flushes the buffered entries and closes the database.
	Close() error
}

// New creates a DataRecorder that writes into a new SQLite file named
// path.sqlite3. An empty path generates a unique name.
func New(path string) DataRecorder {
	if path == "" {
		path = "hookr_recording_" + xid.New().String()
	}

	filename := path + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	return newWriter(db, dialectSQLite, path)
}

// Open creates a DataRecorder on a database reachable through a registered
// database/sql driver, such as "sqlite3" or "mysql".
func Open(driver, dsn string) (DataRecorder, error) {
	d, err := dialectOf(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}

	return newWriter(db, d, dsn), nil
}

// NewWithDB creates a new DataRecorder with a given SQLite database.
func NewWithDB(db *sql.DB) DataRecorder {
	return newWriter(db, dialectSQLite, "")
}

func newWriter(db *sql.DB, d dialect, name string) *sqlWriter {
	w := &sqlWriter{
		DB:        db,
		dialect:   d,
		dbName:    name,
		batchSize: DefaultBatchSize,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	columns []string
	entries []any
}

// sqlWriter buffers entries and writes them in batches.
type sqlWriter struct {
	*sql.DB
	dialect dialect

	mu         sync.Mutex
	dbName     string
	tables     map[string]*table
	tableOrder []string
	batchSize  int
	entryCount int
	closed     bool
}

func (t *sqlWriter) checkStructFields(entry any) error {
	if !structs.IsStruct(entry) {
		return fmt.Errorf("entry of type %T is not a struct", entry)
	}

	fields := structs.Fields(entry)
	if len(fields) == 0 {
		return errors.New("entry has no exported fields")
	}

	for _, field := range fields {
		if !field.IsExported() {
			return fmt.Errorf("field %s is not exported", field.Name())
		}

		if _, ok := t.dialect.columnType(field.Kind()); !ok {
			return fmt.Errorf("field %s of kind %s cannot be recorded",
				field.Name(), field.Kind())
		}
	}

	return nil
}

func (t *sqlWriter) CreateTable(tableName string, sampleEntry any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.checkStructFields(sampleEntry)
	if err != nil {
		panic(err)
	}

	if _, exists := t.tables[tableName]; exists {
		panic(fmt.Sprintf("table %s already exists", tableName))
	}

	names := structs.Names(sampleEntry)
	columns := make([]string, 0, len(names))

	for _, field := range structs.Fields(sampleEntry) {
		colType, _ := t.dialect.columnType(field.Kind())
		columns = append(columns, field.Name()+" "+colType)
	}

	createTableSQL := `CREATE TABLE ` + tableName +
		` (` + "\n\t" + strings.Join(columns, ", \n\t") + "\n" + `);`
	t.mustExecute(createTableSQL)

	t.tables[tableName] = &table{columns: names}
	t.tableOrder = append(t.tableOrder, tableName)
}

func (t *sqlWriter) InsertData(tableName string, entry any) {
	t.mu.Lock()

	table, exists := t.tables[tableName]
	if !exists {
		t.mu.Unlock()
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	table.entries = append(table.entries, entry)

	t.entryCount++
	full := t.entryCount >= t.batchSize

	t.mu.Unlock()

	if full {
		t.Flush()
	}
}

func (t *sqlWriter) ListTables() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]string(nil), t.tableOrder...)
}

func (t *sqlWriter) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.flush()
}

func (t *sqlWriter) flush() {
	if t.entryCount == 0 || t.closed {
		return
	}

	tx, err := t.Begin()
	if err != nil {
		panic(err)
	}

	tableNames := append([]string(nil), t.tableOrder...)
	sort.Strings(tableNames)

	for _, tableName := range tableNames {
		table := t.tables[tableName]
		if len(table.entries) == 0 {
			continue
		}

		stmt := t.prepareStatement(tx, tableName, table)

		for _, entry := range table.entries {
			_, err := stmt.Exec(structs.Values(entry)...)
			if err != nil {
				panic(err)
			}
		}

		table.entries = nil

		stmt.Close()
	}

	err = tx.Commit()
	if err != nil {
		panic(err)
	}

	t.entryCount = 0
}

func (t *sqlWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.flush()
	t.closed = true

	return t.DB.Close()
}

func (t *sqlWriter) mustExecute(query string) sql.Result {
	res, err := t.Exec(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}

func (t *sqlWriter) prepareStatement(
	tx *sql.Tx,
	tableName string,
	table *table,
) *sql.Stmt {
	marks := make([]string, len(table.columns))
	for i := range marks {
		marks[i] = "?"
	}

	sqlStr := "INSERT INTO " + tableName +
		" (" + strings.Join(table.columns, ", ") + ")" +
		" VALUES (" + strings.Join(marks, ", ") + ")"

	stmt, err := tx.Prepare(sqlStr)
	if err != nil {
		panic(err)
	}

	return stmt
}
