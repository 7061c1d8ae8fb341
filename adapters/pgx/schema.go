package pgx

import (
	"context"
	"fmt"
)

// schema is idempotent; Migrate can run on every start.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS public.users (
		id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		email      text NOT NULL UNIQUE,
		name       text NOT NULL,
		role       text NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
		bio        text,
		avatar     text,
		is_active  boolean NOT NULL DEFAULT true,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS public.accounts (
		id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id     uuid NOT NULL REFERENCES public.users (id) ON DELETE CASCADE,
		provider_id text NOT NULL,
		account_id  text NOT NULL,
		password    text,
		created_at  timestamptz NOT NULL DEFAULT now(),
		updated_at  timestamptz NOT NULL DEFAULT now(),
		UNIQUE (user_id, provider_id)
	)`,
	`CREATE INDEX IF NOT EXISTS users_created_at_idx ON public.users (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS public.categories (
		id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		name       text NOT NULL,
		slug       text NOT NULL UNIQUE,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS public.posts (
		id             uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		author_id      uuid NOT NULL CONSTRAINT ` + postsAuthorFK + ` REFERENCES public.users (id) ON DELETE CASCADE,
		category_id    uuid NOT NULL CONSTRAINT ` + postsCategoryFK + ` REFERENCES public.categories (id) ON DELETE RESTRICT,
		title          text NOT NULL CHECK (char_length(title) <= 200),
		slug           text NOT NULL UNIQUE,
		content        text NOT NULL,
		featured_image text,
		tags           text[] NOT NULL DEFAULT '{}',
		views          bigint NOT NULL DEFAULT 0 CHECK (views >= 0),
		reading_time   integer NOT NULL DEFAULT 1 CHECK (reading_time >= 1),
		is_published   boolean NOT NULL DEFAULT true,
		created_at     timestamptz NOT NULL DEFAULT now(),
		updated_at     timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS posts_author_created_idx ON public.posts (author_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS posts_category_created_idx ON public.posts (category_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS posts_views_idx ON public.posts (views DESC, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS posts_tags_idx ON public.posts USING gin (tags)`,
}

// Migrate creates the tables and indexes if they do not exist.
func (a *Adapter) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := a.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return nil
}
