package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	db       *pgxpool.Pool
	Guide    GuideRepository
	Response ResponseRepository
}

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := bootstrap(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	return &Repository{
		db:       db,
		Guide:    NewGuideRepository(db),
		Response: NewResponseRepository(db),
	}, nil
}

func (r *Repository) Close() {
	r.db.Close()
}

func bootstrap(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS guides (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	title VARCHAR(255) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	type VARCHAR(50) NOT NULL,
	tags TEXT[] NOT NULL DEFAULT '{}',
	status VARCHAR(20) NOT NULL DEFAULT 'draft',
	custom_url VARCHAR(255) UNIQUE,
	views BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS slides (
	id UUID PRIMARY KEY,
	guide_id UUID NOT NULL REFERENCES guides(id) ON DELETE CASCADE,
	title VARCHAR(255) NOT NULL,
	position INT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS content_blocks (
	id UUID PRIMARY KEY,
	slide_id UUID NOT NULL REFERENCES slides(id) ON DELETE CASCADE,
	type VARCHAR(20) NOT NULL,
	content TEXT,
	left_content TEXT,
	right_content TEXT,
	left_type VARCHAR(20),
	right_type VARCHAR(20),
	styles JSONB NOT NULL DEFAULT '{}',
	position INT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_responses (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	guide_id UUID NOT NULL,
	slide_id UUID NOT NULL,
	block_id UUID NOT NULL,
	user_identifier VARCHAR(255) NOT NULL,
	question TEXT NOT NULL,
	answer TEXT,
	file_url TEXT,
	file_name TEXT,
	file_size BIGINT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (block_id, user_identifier)
);

CREATE INDEX IF NOT EXISTS idx_slides_guide ON slides(guide_id, position);
CREATE INDEX IF NOT EXISTS idx_blocks_slide ON content_blocks(slide_id, position);
CREATE INDEX IF NOT EXISTS idx_responses_guide ON user_responses(guide_id);
`
