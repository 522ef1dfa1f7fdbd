package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubRow struct {
	err    error
	values []any
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		if i >= len(r.values) {
			break
		}
		switch ptr := d.(type) {
		case *int:
			*ptr = r.values[i].(int)
		case *int64:
			*ptr = r.values[i].(int64)
		}
	}
	return nil
}

// scriptedTx records every statement in order and replays canned results,
// so the write sequence of a transaction can be asserted without a server.
type scriptedTx struct {
	stmts    []string
	execTags []pgconn.CommandTag
	rows     []stubRow
}

func (t *scriptedTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.stmts = append(t.stmts, sql)
	if len(t.execTags) == 0 {
		return pgconn.NewCommandTag("SELECT 1"), nil
	}
	tag := t.execTags[0]
	t.execTags = t.execTags[1:]
	return tag, nil
}

func (t *scriptedTx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	t.stmts = append(t.stmts, sql)
	if len(t.rows) == 0 {
		return stubRow{err: pgx.ErrNoRows}
	}
	row := t.rows[0]
	t.rows = t.rows[1:]
	return row
}

func (t *scriptedTx) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("not supported")
}

func (t *scriptedTx) Commit(context.Context) error   { return nil }
func (t *scriptedTx) Rollback(context.Context) error { return nil }

func (t *scriptedTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not supported")
}

func (t *scriptedTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *scriptedTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }

func (t *scriptedTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("not supported")
}

func (t *scriptedTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (t *scriptedTx) Conn() *pgx.Conn { return nil }

func stmtIndex(stmts []string, fragment string) int {
	for i, s := range stmts {
		if strings.Contains(s, fragment) {
			return i
		}
	}
	return -1
}

func TestRecordLikeTxLocksPairBeforeInsert(t *testing.T) {
	tx := &scriptedTx{
		execTags: []pgconn.CommandTag{
			pgconn.NewCommandTag("SELECT 1"),
			pgconn.NewCommandTag("INSERT 0 1"),
		},
		rows: []stubRow{{err: pgx.ErrNoRows}},
	}

	store := NewStore(nil)
	outcome, err := store.recordLikeTx(context.Background(), tx, 7, 3)
	if err != nil {
		t.Fatalf("record like: %v", err)
	}
	if outcome.Mutual || outcome.AlreadyLiked {
		t.Fatalf("one-sided like must be a plain record, got %+v", outcome)
	}

	lockAt := stmtIndex(tx.stmts, "pg_advisory_xact_lock")
	insertAt := stmtIndex(tx.stmts, "INSERT INTO likes")
	if lockAt == -1 {
		t.Fatalf("pair lock statement missing, got %q", tx.stmts)
	}
	if insertAt == -1 {
		t.Fatalf("like insert statement missing, got %q", tx.stmts)
	}
	if lockAt > insertAt {
		t.Fatalf("pair lock must run before the like insert: lock at %d, insert at %d", lockAt, insertAt)
	}
}

func TestRecordLikeTxReportsMutual(t *testing.T) {
	tx := &scriptedTx{
		execTags: []pgconn.CommandTag{
			pgconn.NewCommandTag("SELECT 1"),
			pgconn.NewCommandTag("INSERT 0 1"),
		},
		rows: []stubRow{
			{values: []any{1}},
			{values: []any{int64(42)}},
		},
	}

	store := NewStore(nil)
	outcome, err := store.recordLikeTx(context.Background(), tx, 3, 7)
	if err != nil {
		t.Fatalf("record like: %v", err)
	}
	if !outcome.Mutual {
		t.Fatalf("reciprocal like must report mutual, got %+v", outcome)
	}
	if stmtIndex(tx.stmts, "INSERT INTO matches") == -1 {
		t.Fatalf("match insert missing, got %q", tx.stmts)
	}
}

func TestRecordLikeTxRepeatSkipsMutualCheck(t *testing.T) {
	tx := &scriptedTx{
		execTags: []pgconn.CommandTag{
			pgconn.NewCommandTag("SELECT 1"),
			pgconn.NewCommandTag("INSERT 0 0"),
		},
	}

	store := NewStore(nil)
	outcome, err := store.recordLikeTx(context.Background(), tx, 7, 3)
	if err != nil {
		t.Fatalf("record like: %v", err)
	}
	if !outcome.AlreadyLiked {
		t.Fatalf("conflicting insert must report AlreadyLiked, got %+v", outcome)
	}
	if stmtIndex(tx.stmts, "FROM likes") != -1 || stmtIndex(tx.stmts, "INSERT INTO matches") != -1 {
		t.Fatalf("repeated like must not re-run the mutual check, got %q", tx.stmts)
	}
}
