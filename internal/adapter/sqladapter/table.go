package sqladapter

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	// Registers the "postgres" driver used by Connect.
	_ "github.com/lib/pq"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// DefaultPrimaryKey is the primary key column when Table.PrimaryKey is empty.
const DefaultPrimaryKey = "id"

// Table describes the SQL table backing a model.
type Table struct {
	adapter.Hooks

	DB   *sqlx.DB
	Name string
	// PrimaryKey is the column matched against hit ids and used for keyset batching.
	PrimaryKey string
	// Columns selected; all columns when empty.
	Columns []string
	// Where is a static scope predicate with '?' placeholders bound to Args.
	Where string
	Args  []any
	// OrderBy is a configured explicit order. When set, fetched records keep
	// this order instead of hit order.
	OrderBy string
	// Scan converts the current row into a record. Default: map[string]any.
	Scan func(rows *sqlx.Rows) (any, error)
	// KeyOf returns the primary key value of a record for keyset batching.
	// Default: the PrimaryKey entry of map records.
	KeyOf func(record any) (any, error)
}

// Scope narrows imported rows. Where uses '?' placeholders.
type Scope struct {
	Where string
	Args  []any
}

// Connect opens a postgres connection pool.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

func (t *Table) pk() string {
	if t.PrimaryKey == "" {
		return DefaultPrimaryKey
	}
	return t.PrimaryKey
}

func (t *Table) columns() string {
	if len(t.Columns) == 0 {
		return "*"
	}
	return strings.Join(t.Columns, ", ")
}

func (t *Table) validate() error {
	if t.DB == nil {
		return fmt.Errorf("table %q: db is required", t.Name)
	}
	if t.Name == "" {
		return fmt.Errorf("table name is required")
	}
	return nil
}

func (t *Table) scan(rows *sqlx.Rows) (any, error) {
	if t.Scan != nil {
		return t.Scan(rows)
	}
	m := make(map[string]any)
	if err := rows.MapScan(m); err != nil {
		return nil, err
	}
	for k, v := range m {
		if b, ok := v.([]byte); ok {
			m[k] = string(b)
		}
	}
	return m, nil
}

// idOf returns the document id of a record: the primary key of map records,
// the class id otherwise.
func (t *Table) idOf(class *model.Class) func(any) (string, error) {
	return func(record any) (string, error) {
		if m, ok := record.(map[string]any); ok {
			v, ok := m[t.pk()]
			if !ok || v == nil {
				return "", fmt.Errorf("row without %s", t.pk())
			}
			return model.FormatID(v), nil
		}
		return class.ID(record)
	}
}

func (t *Table) keyOf(class *model.Class, record any) (any, error) {
	if t.KeyOf != nil {
		return t.KeyOf(record)
	}
	if m, ok := record.(map[string]any); ok {
		if v, ok := m[t.pk()]; ok && v != nil {
			return v, nil
		}
		return nil, fmt.Errorf("row without %s", t.pk())
	}
	return class.ID(record)
}
