package pgx

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lborres/quill/core"
)

// Postgres error codes the adapter translates.
const (
	uniqueViolation           = "23505"
	foreignKeyViolation       = "23503"
	invalidTextRepresentation = "22P02"
)

// Foreign key constraints named in the schema.
const (
	postsAuthorFK   = "posts_author_id_fkey"
	postsCategoryFK = "posts_category_id_fkey"
)

type Adapter struct {
	pool *pgxpool.Pool
}

var _ core.Storage = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}

// errorMapping names the quill errors a family of queries fails with.
type errorMapping struct {
	// notFound is returned for missing rows and for ids that are not valid
	// uuids.
	notFound error
	conflict error

	// foreignKeys maps constraint names to the error for a violation.
	foreignKeys map[string]error
}

var (
	userErrors    = errorMapping{notFound: core.ErrUserNotFound, conflict: core.ErrUserExists}
	accountErrors = errorMapping{notFound: core.ErrAccountNotFound, conflict: core.ErrUserExists}

	categoryErrors = errorMapping{
		notFound:    core.ErrCategoryNotFound,
		conflict:    core.ErrCategoryExists,
		foreignKeys: map[string]error{postsCategoryFK: core.ErrCategoryInUse},
	}
	postErrors = errorMapping{
		notFound: core.ErrPostNotFound,
		conflict: core.ErrPostExists,
		foreignKeys: map[string]error{
			postsCategoryFK: core.ErrCategoryNotFound,
			postsAuthorFK:   core.ErrUserNotFound,
		},
	}
)

// translate turns driver errors into quill errors. Anything it does not
// recognize is returned unchanged.
func (m errorMapping) translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return m.notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return m.conflict
		case invalidTextRepresentation:
			return m.notFound
		case foreignKeyViolation:
			if mapped, ok := m.foreignKeys[pgErr.ConstraintName]; ok {
				return mapped
			}
		}
	}
	return err
}
