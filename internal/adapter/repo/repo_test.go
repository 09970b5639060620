package repo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"genstudio/internal/domain"
	"genstudio/internal/sqlinline"
)

type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type docRows struct {
	docs [][]byte
	idx  int
}

func (r *docRows) Close()                                       {}
func (r *docRows) Err() error                                   { return nil }
func (r *docRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *docRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *docRows) Values() ([]any, error)                       { return nil, errors.New("not supported") }
func (r *docRows) RawValues() [][]byte                          { return nil }
func (r *docRows) Conn() *pgx.Conn                              { return nil }

func (r *docRows) Next() bool {
	if r.idx >= len(r.docs) {
		return false
	}
	r.idx++
	return true
}

func (r *docRows) Scan(dest ...any) error {
	*(dest[0].(*[]byte)) = r.docs[r.idx-1]
	return nil
}

type stubSQL struct {
	queryRow func(query string, args ...any) pgx.Row
	rows     *docRows
	execs    [][]any
	queries  []string
}

func (s *stubSQL) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.queries = append(s.queries, query)
	s.execs = append(s.execs, args)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (s *stubSQL) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.queries = append(s.queries, query)
	if s.queryRow == nil {
		return simpleRow{}
	}
	return s.queryRow(query, args...)
}

func (s *stubSQL) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	s.queries = append(s.queries, query)
	s.execs = append(s.execs, args)
	return s.rows, nil
}

func TestCreditBalance(t *testing.T) {
	sql := &stubSQL{queryRow: func(query string, args ...any) pgx.Row {
		return simpleRow{scan: func(dest ...any) error {
			*(dest[0].(*int)) = 12
			return nil
		}}
	}}
	got, err := NewCreditRepository(sql).Balance(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Balance returned error: %v", err)
	}
	if got != 12 {
		t.Fatalf("balance = %d, want 12", got)
	}
	if sql.queries[0] != sqlinline.QSelectCreditBalance {
		t.Fatalf("unexpected query %q", sql.queries[0])
	}
}

func TestCreditDeduct(t *testing.T) {
	var gotArgs []any
	sql := &stubSQL{queryRow: func(query string, args ...any) pgx.Row {
		gotArgs = args
		return simpleRow{scan: func(dest ...any) error {
			*(dest[0].(*int)) = 6
			return nil
		}}
	}}
	balance, err := NewCreditRepository(sql).Deduct(context.Background(), "u1", 4)
	if err != nil {
		t.Fatalf("Deduct returned error: %v", err)
	}
	if balance != 6 {
		t.Fatalf("balance = %d, want 6", balance)
	}
	if len(gotArgs) != 2 || gotArgs[0] != "u1" || gotArgs[1] != 4 {
		t.Fatalf("args = %#v", gotArgs)
	}
}

func TestCreditDeductInsufficient(t *testing.T) {
	sql := &stubSQL{}
	_, err := NewCreditRepository(sql).Deduct(context.Background(), "u1", 4)
	if !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}
}

func TestCreditDeductRejectsNegative(t *testing.T) {
	sql := &stubSQL{}
	if _, err := NewCreditRepository(sql).Deduct(context.Background(), "u1", -1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if len(sql.queries) != 0 {
		t.Fatalf("negative deduction reached the database")
	}
}

func TestGenerationSave(t *testing.T) {
	sql := &stubSQL{}
	repo := NewGenerationRepository(sql)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	g := &domain.Generation{UserID: "u1", Kind: domain.GenerationKindImage, Model: "dall-e", Prompt: "a fox", URL: "https://cdn/x.jpg", Credits: 4}
	if err := repo.Save(context.Background(), g); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if g.ID == "" {
		t.Fatalf("expected id to be assigned")
	}
	if !g.CreatedAt.Equal(fixed) {
		t.Fatalf("CreatedAt = %v, want %v", g.CreatedAt, fixed)
	}
	args := sql.execs[0]
	if args[2] != "image" || args[3] != "dall-e" {
		t.Fatalf("args = %#v", args)
	}
	var doc map[string]any
	if err := json.Unmarshal(args[4].([]byte), &doc); err != nil {
		t.Fatalf("document is not json: %v", err)
	}
	if doc["prompt"] != "a fox" || doc["credits"] != float64(4) {
		t.Fatalf("document = %#v", doc)
	}
}

func TestGenerationListByUser(t *testing.T) {
	sql := &stubSQL{rows: &docRows{docs: [][]byte{
		[]byte(`{"id":"g2","userId":"u1","kind":"video","model":"d-id"}`),
		[]byte(`{"id":"g1","userId":"u1","kind":"image","model":"dall-e"}`),
	}}}
	got, err := NewGenerationRepository(sql).ListByUser(context.Background(), "u1", 0, -3)
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "g2" || got[1].Kind != domain.GenerationKindImage {
		t.Fatalf("generations = %+v", got)
	}
	args := sql.execs[0]
	if args[1] != maxListLimit || args[2] != 0 {
		t.Fatalf("limit/offset = %v/%v", args[1], args[2])
	}
	if !strings.Contains(sql.queries[0], "order by created_at desc") {
		t.Fatalf("unexpected query %q", sql.queries[0])
	}
}
