package sqladapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

// Name is the adapter name.
const Name = "sql"

// DefaultBatchSize is used when BatchOptions.Size is not positive.
const DefaultBatchSize = 1000

// Set returns the SQL capability set.
func Set() adapter.Set {
	return adapter.Set{
		Name:      Name,
		Records:   records{},
		Callbacks: adapter.HookCallbacks{},
		Importing: importing{},
	}
}

// Matches reports whether class is backed by a SQL table.
func Matches(class *model.Class) bool {
	_, ok := class.Source().(*Table)
	return ok
}

func tableOf(class *model.Class) (*Table, error) {
	t, ok := class.Source().(*Table)
	if !ok {
		return nil, fmt.Errorf("%s: source %T is not a *sqladapter.Table", class.Name(), class.Source())
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

type records struct{}

// Fetch loads rows by primary key in one query.
func (records) Fetch(ctx context.Context, l adapter.Lookup) ([]adapter.Hydrated, error) {
	t, err := tableOf(l.Class)
	if err != nil {
		return nil, err
	}
	if len(l.IDs) == 0 {
		return nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE %s IN (?)", t.columns(), t.Name, t.pk())
	if t.Where != "" {
		fmt.Fprintf(&b, " AND (%s)", t.Where)
	}
	order := l.Order
	if order == "" {
		order = t.OrderBy
	}
	if order != "" {
		fmt.Fprintf(&b, " ORDER BY %s", order)
	}

	query, args, err := sqlx.In(b.String(), append([]any{l.IDs}, t.Args...)...)
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", l.Class.Name(), err)
	}

	out, err := t.query(ctx, t.DB.Rebind(query), args)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch records: %w", l.Class.Name(), err)
	}
	if order != "" {
		return adapter.Pair(out, l.IDs, t.idOf(l.Class)), nil
	}
	return adapter.Reorder(out, l.IDs, t.idOf(l.Class)), nil
}

func (t *Table) query(ctx context.Context, query string, args []any) ([]any, error) {
	rows, err := t.DB.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		rec, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type importing struct{}

// FindInBatches walks the table in primary key order using keyset pagination.
func (importing) FindInBatches(ctx context.Context, class *model.Class, opts adapter.BatchOptions, fn func([]any) error) error {
	t, err := tableOf(class)
	if err != nil {
		return err
	}
	size := opts.Size
	if size <= 0 {
		size = DefaultBatchSize
	}
	scope, err := scopeOf(opts.Scope)
	if err != nil {
		return fmt.Errorf("%s: %w", class.Name(), err)
	}

	var last any
	for {
		query, args := t.batchQuery(scope, last, size)
		batch, err := t.query(ctx, t.DB.Rebind(query), args)
		if err != nil {
			return fmt.Errorf("%s: batch after %v: %w", class.Name(), last, err)
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < size {
			return nil
		}
		if last, err = t.keyOf(class, batch[len(batch)-1]); err != nil {
			return fmt.Errorf("%s: batch cursor: %w", class.Name(), err)
		}
	}
}

func (t *Table) batchQuery(scope Scope, last any, size int) (string, []any) {
	var conds []string
	var args []any
	if t.Where != "" {
		conds = append(conds, "("+t.Where+")")
		args = append(args, t.Args...)
	}
	if scope.Where != "" {
		conds = append(conds, "("+scope.Where+")")
		args = append(args, scope.Args...)
	}
	if last != nil {
		conds = append(conds, t.pk()+" > ?")
		args = append(args, last)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", t.columns(), t.Name)
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY %s LIMIT %d", t.pk(), size)
	return b.String(), args
}

func scopeOf(v any) (Scope, error) {
	switch s := v.(type) {
	case nil:
		return Scope{}, nil
	case Scope:
		return s, nil
	case *Scope:
		return *s, nil
	case string:
		return Scope{Where: s}, nil
	default:
		return Scope{}, fmt.Errorf("unsupported scope %T", v)
	}
}
