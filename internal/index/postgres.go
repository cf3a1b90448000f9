// Package index stores grouped video timelines in Postgres with pgvector
// embeddings and answers semantic searches over them. Indexing is an
// optional step after grouping; the filesystem artifacts remain the source
// of truth.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"vidscribe/internal/models"
)

// PostgresConfig holds connection details for PostgreSQL.
type PostgresConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	EmbeddingDim int
}

func (c PostgresConfig) connString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Indexer writes grouped runs into Postgres and searches them.
type Indexer struct {
	pool       *pgxpool.Pool
	embeddings *Service
	logger     *slog.Logger
}

func NewIndexer(ctx context.Context, cfg PostgresConfig, embeddings *Service, logger *slog.Logger) (*Indexer, error) {
	pool, err := pgxpool.New(ctx, cfg.connString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Indexer{pool: pool, embeddings: embeddings, logger: logger}, nil
}

func (ix *Indexer) Close() {
	if ix.pool != nil {
		ix.pool.Close()
	}
}

// InitSchema creates the pgvector extension, tables, and indexes.
func InitSchema(ctx context.Context, cfg PostgresConfig) error {
	conn, err := pgx.Connect(ctx, cfg.connString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	_, err = conn.Exec(ctx, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS videos (
            id SERIAL PRIMARY KEY,
            name VARCHAR(255) NOT NULL,
            folder VARCHAR(1024) NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            UNIQUE(folder, name)
        );

        CREATE TABLE IF NOT EXISTS runs (
            id SERIAL PRIMARY KEY,
            video_id INTEGER REFERENCES videos(id) ON DELETE CASCADE,
            start_time VARCHAR(16) NOT NULL,
            end_time VARCHAR(16) NOT NULL,
            description TEXT NOT NULL,
            embedding vector(%d),
            created_at TIMESTAMPTZ NOT NULL
        );
    `, cfg.EmbeddingDim))
	if err != nil {
		return fmt.Errorf("failed to create database schema: %w", err)
	}

	_, err = conn.Exec(ctx, `
        CREATE INDEX IF NOT EXISTS idx_runs_video_id ON runs(video_id);
        CREATE INDEX IF NOT EXISTS idx_runs_embedding ON runs USING ivfflat (embedding vector_l2_ops) WITH (lists = 100);
    `)
	if err != nil {
		return fmt.Errorf("failed to create database indexes: %w", err)
	}
	return nil
}

// getOrCreateVideo returns the row id for a (folder, video) pair, inserting
// it on first sight.
func (ix *Indexer) getOrCreateVideo(ctx context.Context, folder, name string) (int, error) {
	var id int
	err := ix.pool.QueryRow(ctx,
		"SELECT id FROM videos WHERE folder = $1 AND name = $2",
		folder, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != pgx.ErrNoRows {
		return 0, fmt.Errorf("error checking for existing video: %w", err)
	}

	err = ix.pool.QueryRow(ctx,
		"INSERT INTO videos (folder, name, created_at) VALUES ($1, $2, $3) RETURNING id",
		folder, name, time.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create video entry: %w", err)
	}
	return id, nil
}

// IndexFolder stores every grouped run of a folder document, replacing any
// previously indexed runs for the same videos. It returns the number of runs
// written. A failed embedding is logged and the run is stored without one.
func (ix *Indexer) IndexFolder(ctx context.Context, doc models.FolderDocument) (int, error) {
	names := make([]string, 0, len(doc.Videos))
	for name := range doc.Videos {
		names = append(names, name)
	}
	sort.Strings(names)

	indexed := 0
	for _, name := range names {
		videoID, err := ix.getOrCreateVideo(ctx, doc.Folder, name)
		if err != nil {
			return indexed, err
		}
		if _, err := ix.pool.Exec(ctx, "DELETE FROM runs WHERE video_id = $1", videoID); err != nil {
			return indexed, fmt.Errorf("failed to clear previous runs for %s: %w", name, err)
		}

		for _, run := range doc.Videos[name].Timestamps {
			res := <-ix.embeddings.Get(run.Description)
			var embedding any
			if res.Error != nil {
				ix.logger.Warn("embedding failed, indexing run without one",
					"video", name, "start", run.StartTime, "error", res.Error)
			} else {
				embedding = pgvector.NewVector(res.Embedding)
			}
			_, err := ix.pool.Exec(ctx,
				`INSERT INTO runs (video_id, start_time, end_time, description, embedding, created_at)
                 VALUES ($1, $2, $3, $4, $5, $6)`,
				videoID, run.StartTime, run.EndTime, run.Description, embedding, time.Now())
			if err != nil {
				return indexed, fmt.Errorf("failed to store run for %s: %w", name, err)
			}
			indexed++
		}
		ix.logger.Info("indexed video", "video", name, "runs", len(doc.Videos[name].Timestamps))
	}
	return indexed, nil
}

// SearchResult is one semantic search hit.
type SearchResult struct {
	Video       string
	Folder      string
	StartTime   string
	EndTime     string
	Description string
	Similarity  float64
}

// Search embeds the query and returns the closest indexed runs.
func (ix *Indexer) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	res := <-ix.embeddings.Get(query)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to embed query: %w", res.Error)
	}

	rows, err := ix.pool.Query(ctx,
		`SELECT v.name, v.folder, r.start_time, r.end_time, r.description,
                1 - (r.embedding <=> $1) AS similarity
         FROM runs r
         JOIN videos v ON r.video_id = v.id
         WHERE r.embedding IS NOT NULL
         ORDER BY r.embedding <=> $1
         LIMIT $2`,
		pgvector.NewVector(res.Embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search runs: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Video, &r.Folder, &r.StartTime, &r.EndTime, &r.Description, &r.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan search results: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
