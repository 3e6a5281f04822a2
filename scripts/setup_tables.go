package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	// Read environment to determine table prefix
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	prefix := os.Getenv("TABLE_PREFIX")
	if prefix == "" {
		switch env {
		case "prod":
			prefix = "prod_"
		case "test":
			prefix = "test_"
		default:
			prefix = "dev_"
		}
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	schemaSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]sfolders (
			id         TEXT PRIMARY KEY,
			owner_id   TEXT NOT NULL,
			name       TEXT NOT NULL,
			parent_id  TEXT REFERENCES %[1]sfolders(id) ON DELETE SET NULL,
			color      TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS %[1]sseries (
			id          TEXT PRIMARY KEY,
			owner_id    TEXT NOT NULL,
			name        TEXT NOT NULL,
			description TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (owner_id, name)
		);

		CREATE TABLE IF NOT EXISTS %[1]sdocuments (
			id             TEXT PRIMARY KEY,
			owner_id       TEXT NOT NULL,
			folder_id      TEXT REFERENCES %[1]sfolders(id) ON DELETE SET NULL,
			series_id      TEXT REFERENCES %[1]sseries(id) ON DELETE SET NULL,
			chapter_number INTEGER,
			title          TEXT NOT NULL,
			content        TEXT NOT NULL DEFAULT '',
			tags           TEXT[] NOT NULL DEFAULT '{}',
			word_count     INTEGER NOT NULL DEFAULT 0,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS %[1]sdocument_versions (
			id             TEXT PRIMARY KEY,
			document_id    TEXT NOT NULL REFERENCES %[1]sdocuments(id) ON DELETE CASCADE,
			version_number INTEGER NOT NULL,
			title          TEXT NOT NULL,
			content        TEXT NOT NULL,
			word_count     INTEGER NOT NULL DEFAULT 0,
			change_summary TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (document_id, version_number)
		);

		CREATE INDEX IF NOT EXISTS %[1]sfolders_owner_idx
			ON %[1]sfolders (owner_id);
		CREATE INDEX IF NOT EXISTS %[1]sseries_owner_idx
			ON %[1]sseries (owner_id);
		CREATE INDEX IF NOT EXISTS %[1]sdocuments_owner_idx
			ON %[1]sdocuments (owner_id, updated_at DESC);
		CREATE INDEX IF NOT EXISTS %[1]sdocuments_folder_idx
			ON %[1]sdocuments (folder_id);
		CREATE INDEX IF NOT EXISTS %[1]sdocuments_series_idx
			ON %[1]sdocuments (series_id, chapter_number);
		CREATE INDEX IF NOT EXISTS %[1]sdocuments_fts_idx
			ON %[1]sdocuments USING gin (
				to_tsvector('english', title || ' ' || content)
			);
		CREATE INDEX IF NOT EXISTS %[1]sdocument_versions_doc_idx
			ON %[1]sdocument_versions (document_id, version_number DESC);
	`, prefix)

	if _, err := db.Exec(schemaSQL); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	fmt.Printf("All tables created successfully (prefix: %s)\n", prefix)
}
