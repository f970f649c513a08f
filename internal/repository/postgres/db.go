package postgres

import (
	"fmt"
	"strings"

	"go-jobboard-backend/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// translate maps driver errors onto the gateway sentinels and attaches a
// stack to anything else.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrNotFound
	case isUniqueViolation(err):
		return domain.ErrAlreadyExists
	default:
		return errors.Wrap(err, op)
	}
}

// args numbers positional parameters as they are added, so that a predicate
// can be shared between a listing query and its COUNT(*).
type args struct {
	values []any
}

func (a *args) add(v any) string {
	a.values = append(a.values, v)
	return fmt.Sprintf("$%d", len(a.values))
}

type where struct {
	args
	clauses []string
}

func (w *where) and(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// setList builds the SET clause of a partial update.
type setList struct {
	*args
	sets []string
}

func newSetList(a *args) *setList {
	return &setList{args: a}
}

func (s *setList) set(column string, v any) {
	s.sets = append(s.sets, column+" = "+s.add(v))
}

func (s *setList) String() string {
	return strings.Join(append(s.sets, "updated_at = NOW()"), ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps a user term for a substring ILIKE match.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// prefixedRow scans leading columns into prefix before handing the rest to
// a shared scanner such as scanJob.
type prefixedRow struct {
	row    pgx.Row
	prefix []any
}

func (p prefixedRow) Scan(dest ...any) error {
	return p.row.Scan(append(p.prefix, dest...)...)
}
