// FILE: lixenwraith/zconfig/dbsource/dbsource.go

// Package dbsource reads configuration from a key/value table in an SQLite
// database. Register it with zconfig.Config.RegisterParser and add files of
// the form
//
//	sqlite:///var/lib/myapp/config.db/settings/key/value
//
// where the last three segments name the table, the key column and the value
// column. Keys are dotted paths; shorter keys are applied first so a longer
// key refines the value of its parent.
package dbsource

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lixenwraith/zconfig"
	_ "modernc.org/sqlite"
)

// Scheme is the locator prefix handled by Parser.
const Scheme = "sqlite://"

// Parser implements zconfig.Parser for SQLite tables.
type Parser struct{}

// New returns an SQLite parser.
func New() Parser {
	return Parser{}
}

// Locator is a parsed database locator.
type Locator struct {
	File      string
	Query     string
	Table     string
	KeyColumn string
	ValColumn string
}

// ParseLocator splits a sqlite:// locator into its parts.
func ParseLocator(locator string) (Locator, error) {
	rest, ok := strings.CutPrefix(locator, Scheme)
	if !ok {
		return Locator{}, fmt.Errorf("locator %q does not start with %s", locator, Scheme)
	}

	var query string
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest, query = rest[:i], rest[i+1:]
	}

	pieces := strings.Split(rest, "/")
	if len(pieces) < 4 {
		return Locator{}, fmt.Errorf("locator %q needs a file, table, key column and value column", locator)
	}
	n := len(pieces)
	loc := Locator{
		File:      strings.Join(pieces[:n-3], "/"),
		Query:     query,
		Table:     pieces[n-3],
		KeyColumn: pieces[n-2],
		ValColumn: pieces[n-1],
	}
	if loc.File == "" || loc.Table == "" || loc.KeyColumn == "" || loc.ValColumn == "" {
		return Locator{}, fmt.Errorf("locator %q has an empty segment", locator)
	}
	return loc, nil
}

func (l Locator) dsn() string {
	dsn := "file:" + l.File + "?mode=ro"
	if l.Query != "" {
		dsn += "&" + l.Query
	}
	return dsn
}

// Handles reports whether name is a well-formed sqlite:// locator.
func (Parser) Handles(name string) bool {
	_, err := ParseLocator(name)
	return err == nil
}

// Read loads every row of the table. A missing database, table or column
// yields an empty document. The encoding is unused.
func (Parser) Read(locator, _ string) (map[string]any, error) {
	loc, err := ParseLocator(locator)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(loc.File); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return empty("database %s does not exist", loc.File)
		}
		return nil, fmt.Errorf("stat database: %w", err)
	}

	db, err := sql.Open("sqlite", loc.dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	columns, err := tableColumns(db, loc.Table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return empty("table %s does not exist", loc.Table)
	}
	for _, col := range []string{loc.KeyColumn, loc.ValColumn} {
		if !columns[col] {
			return empty("table %s does not have column %s", loc.Table, col)
		}
	}

	query := fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY length(%s)",
		quote(loc.KeyColumn), quote(loc.ValColumn), quote(loc.Table), quote(loc.KeyColumn))
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", loc.Table, err)
	}
	defer rows.Close()

	store := zconfig.NewStore()
	for rows.Next() {
		var key string
		var value any
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", loc.Table, err)
		}
		if b, ok := value.([]byte); ok {
			value = string(b)
		}
		if err := store.Set(key, value); err != nil {
			return nil, fmt.Errorf("row %q: %w", key, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", loc.Table, err)
	}

	return store.Snapshot(), nil
}

// tableColumns returns the column names of table, or none if it is absent.
func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("inspect table %s: %w", table, err)
		}
		columns[name] = true
	}
	return columns, rows.Err()
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func empty(format string, args ...any) (map[string]any, error) {
	return map[string]any{}, fmt.Errorf("%w: %s", zconfig.ErrEmptyDocument, fmt.Sprintf(format, args...))
}
