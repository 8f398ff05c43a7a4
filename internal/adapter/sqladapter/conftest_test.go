package sqladapter

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
)

// fakeQuery is one executed statement.
type fakeQuery struct {
	sql  string
	args []any
}

// fakeResult answers a query with columns and rows.
type fakeResult struct {
	columns []string
	rows    [][]driver.Value
	err     error
}

// fakeConn is a minimal database/sql driver answering queries from a handler.
type fakeConn struct {
	handle  func(q fakeQuery) fakeResult
	queries *[]fakeQuery
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *fakeConn) Close() error              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) { return nil, errors.New("tx not supported") }

func (c *fakeConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	q := fakeQuery{sql: query}
	for _, a := range args {
		q.args = append(q.args, a.Value)
	}
	*c.queries = append(*c.queries, q)

	res := c.handle(q)
	if res.err != nil {
		return nil, res.err
	}
	return &fakeRows{columns: res.columns, rows: res.rows}, nil
}

type fakeRows struct {
	columns []string
	rows    [][]driver.Value
	pos     int
}

func (r *fakeRows) Columns() []string { return r.columns }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

type fakeConnector struct{ conn *fakeConn }

func (c fakeConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c fakeConnector) Driver() driver.Driver                        { return fakeDriver{} }

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) { return nil, errors.New("use the connector") }

// newFakeDB returns a postgres-flavored sqlx.DB ($n placeholders) over the fake driver.
func newFakeDB(t *testing.T, handle func(q fakeQuery) fakeResult) (*sqlx.DB, *[]fakeQuery) {
	t.Helper()
	var queries []fakeQuery
	conn := &fakeConn{handle: handle, queries: &queries}
	db := sqlx.NewDb(sql.OpenDB(fakeConnector{conn: conn}), "postgres")
	t.Cleanup(func() { _ = db.Close() })
	return db, &queries
}

// rowsByID answers "id IN (...)" lookups from a fixed table in storage order.
func rowsByID(table map[int64]string, storageOrder []int64) func(q fakeQuery) fakeResult {
	return func(q fakeQuery) fakeResult {
		want := make(map[string]bool)
		for _, a := range q.args {
			if s, ok := a.(string); ok {
				want[s] = true
			}
		}
		res := fakeResult{columns: []string{"id", "title"}}
		for _, id := range storageOrder {
			if want[itoa(id)] {
				res.rows = append(res.rows, []driver.Value{id, []byte(table[id])})
			}
		}
		return res
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
