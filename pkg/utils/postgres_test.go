package utils

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"
)

// Minimal driver stub so transaction control flow is testable without a
// database. Only Begin/Commit/Rollback are implemented.

type txRecorder struct {
	commits   int
	rollbacks int
}

type stubConnector struct{ rec *txRecorder }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) {
	return stubConn{rec: c.rec}, nil
}
func (c stubConnector) Driver() driver.Driver { return stubDriver{rec: c.rec} }

type stubDriver struct{ rec *txRecorder }

func (d stubDriver) Open(string) (driver.Conn, error) { return stubConn{rec: d.rec}, nil }

type stubConn struct{ rec *txRecorder }

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (stubConn) Close() error                        { return nil }
func (c stubConn) Begin() (driver.Tx, error)         { return stubTx{rec: c.rec}, nil }

type stubTx struct{ rec *txRecorder }

func (t stubTx) Commit() error   { t.rec.commits++; return nil }
func (t stubTx) Rollback() error { t.rec.rollbacks++; return nil }

func newStubDB() (*sql.DB, *txRecorder) {
	rec := &txRecorder{}
	return sql.OpenDB(stubConnector{rec: rec}), rec
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db, rec := newStubDB()
	defer db.Close()

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx *sql.Tx) error {
		return nil
	})
	if err != nil {
		t.Fatalf("with tx: %v", err)
	}
	if rec.commits != 1 || rec.rollbacks != 0 {
		t.Fatalf("expected one commit, got commits=%d rollbacks=%d", rec.commits, rec.rollbacks)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, rec := newStubDB()
	defer db.Close()

	boom := errors.New("boom")
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx *sql.Tx) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error back, got %v", err)
	}
	if rec.rollbacks != 1 || rec.commits != 0 {
		t.Fatalf("expected one rollback, got commits=%d rollbacks=%d", rec.commits, rec.rollbacks)
	}
}

func TestWithTx_RollbackAndRepanicOnPanic(t *testing.T) {
	db, rec := newStubDB()
	defer db.Close()

	defer func() {
		if p := recover(); p == nil {
			t.Fatalf("expected panic to propagate")
		}
		if rec.rollbacks != 1 || rec.commits != 0 {
			t.Fatalf("expected one rollback, got commits=%d rollbacks=%d", rec.commits, rec.rollbacks)
		}
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx *sql.Tx) error {
		panic("kaboom")
	})
}

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	got := PostgresPoolConfig{}.withDefaults()
	if got.MaxOpenConns <= 0 || got.MaxIdleConns <= 0 {
		t.Fatalf("expected positive pool sizes, got %+v", got)
	}
	if got.PingTimeout <= 0 {
		t.Fatalf("expected ping timeout default, got %+v", got)
	}

	custom := PostgresPoolConfig{MaxOpenConns: 3, PingTimeout: time.Second}.withDefaults()
	if custom.MaxOpenConns != 3 || custom.PingTimeout != time.Second {
		t.Fatalf("explicit values overridden: %+v", custom)
	}
}
