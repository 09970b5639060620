package infra

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

type recordingExecutor struct {
	queries []string
}

func (r *recordingExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	r.queries = append(r.queries, query)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (r *recordingExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	r.queries = append(r.queries, query)
	return errorRow{err: pgx.ErrNoRows}
}

func (r *recordingExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	r.queries = append(r.queries, query)
	return nil, errors.New("not supported")
}

func TestExtractMarker(t *testing.T) {
	marker, body, err := extractMarker("\n--sql 6fe62992-02b6-41a4-8829-2b9f384182d0\nselect 1;\n")
	if err != nil {
		t.Fatalf("extractMarker returned error: %v", err)
	}
	if marker != "6fe62992-02b6-41a4-8829-2b9f384182d0" {
		t.Fatalf("marker = %q", marker)
	}
	if strings.TrimSpace(body) != "select 1;" {
		t.Fatalf("body = %q", body)
	}

	if _, _, err := extractMarker("select 1;"); !errors.Is(err, errMarkerMissing) {
		t.Fatalf("err = %v, want missing marker", err)
	}
	if _, _, err := extractMarker("   "); !errors.Is(err, errEmptyQuery) {
		t.Fatalf("err = %v, want empty query", err)
	}
}

func TestSQLRunnerStripsMarker(t *testing.T) {
	exec := &recordingExecutor{}
	runner := NewSQLRunner(exec, zerolog.New(io.Discard))

	tag, err := runner.Exec(context.Background(), "--sql 6fe62992-02b6-41a4-8829-2b9f384182d0\nupdate t set x = 1;")
	if err != nil {
		t.Fatalf("Exec returned error: %v", err)
	}
	if tag.RowsAffected() != 1 {
		t.Fatalf("rows affected = %d, want 1", tag.RowsAffected())
	}
	if len(exec.queries) != 1 || exec.queries[0] != "update t set x = 1;" {
		t.Fatalf("queries = %#v", exec.queries)
	}

	if _, err := runner.Exec(context.Background(), "update t set x = 1;"); err == nil {
		t.Fatalf("expected error for unmarked query")
	}
	if len(exec.queries) != 1 {
		t.Fatalf("unmarked query reached the pool")
	}

	var n int
	if err := runner.QueryRow(context.Background(), "--sql 6fe62992-02b6-41a4-8829-2b9f384182d0\nselect 1;").Scan(&n); !IsNoRows(err) {
		t.Fatalf("err = %v, want no rows", err)
	}
}
