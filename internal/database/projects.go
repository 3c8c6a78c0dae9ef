package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

// --- Project Operations ---

const upsertProjectSQL = `
	INSERT INTO projects (owner_id, id, name, document, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (owner_id, id) DO UPDATE
	SET name = excluded.name, document = excluded.document, updated_at = excluded.updated_at`

// UpsertProject writes the whole project document, creating or replacing it.
func (db *DB) UpsertProject(ctx context.Context, p *models.Project) error {
	return db.upsertProject(ctx, db.DB, p)
}

func (db *DB) upsertProject(ctx context.Context, exec sqlx.ExecerContext, p *models.Project) error {
	if p.OwnerID == "" || p.ID == "" {
		return fmt.Errorf("project owner and id are required")
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	// JSON goes in as a string so lib/pq lets Postgres cast it to JSONB.
	_, err = exec.ExecContext(ctx, db.q(upsertProjectSQL),
		p.OwnerID, p.ID, p.Name, string(doc), p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// GetProject loads one of the owner's projects.
func (db *DB) GetProject(ctx context.Context, ownerID, id string) (*models.Project, error) {
	doc, err := getDocument(ctx, db.DB,
		db.q(`SELECT document FROM projects WHERE owner_id = ? AND id = ?`), ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", id, err)
	}
	return decodeProject(doc)
}

// ListProjects returns the owner's projects, most recently updated first.
func (db *DB) ListProjects(ctx context.Context, ownerID string) ([]models.Project, error) {
	var docs [][]byte
	err := db.SelectContext(ctx, &docs,
		db.q(`SELECT document FROM projects WHERE owner_id = ? ORDER BY updated_at DESC, id`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]models.Project, 0, len(docs))
	for _, doc := range docs {
		p, err := decodeProject(doc)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, nil
}

// UpdateProject applies fn to the stored project inside one transaction and
// writes the result back with a fresh UpdatedAt. If fn fails nothing is
// written and its error is returned as is.
func (db *DB) UpdateProject(ctx context.Context, ownerID, id string, fn func(p *models.Project) error) (*models.Project, error) {
	var updated *models.Project
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		doc, err := getDocument(ctx, tx,
			db.q(`SELECT document FROM projects WHERE owner_id = ? AND id = ?`+db.forUpdate()), ownerID, id)
		if err != nil {
			return fmt.Errorf("project %s: %w", id, err)
		}
		p, err := decodeProject(doc)
		if err != nil {
			return err
		}

		if err := fn(p); err != nil {
			return err
		}
		// The key columns are never rewritten by fn.
		p.OwnerID, p.ID = ownerID, id
		p.UpdatedAt = time.Now().UTC()

		if err := db.upsertProject(ctx, tx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProject removes the whole project document.
func (db *DB) DeleteProject(ctx context.Context, ownerID, id string) error {
	result, err := db.ExecContext(ctx,
		db.q(`DELETE FROM projects WHERE owner_id = ? AND id = ?`), ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

func decodeProject(doc []byte) (*models.Project, error) {
	var p models.Project
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("failed to decode project document: %w", err)
	}
	if p.Scenes == nil {
		p.Scenes = []models.Scene{}
	}
	return &p, nil
}
