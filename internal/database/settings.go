package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

// --- User Config Operations ---

const upsertConfigSQL = `
	INSERT INTO user_configs (owner_id, document, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT (owner_id) DO UPDATE
	SET document = excluded.document, updated_at = excluded.updated_at`

// GetUserConfig loads the owner's settings with secrets opened. An owner with
// no saved settings gets the defaults.
func (db *DB) GetUserConfig(ctx context.Context, ownerID string) (*models.UserConfig, error) {
	return db.getUserConfig(ctx, db.DB, ownerID, "")
}

func (db *DB) getUserConfig(ctx context.Context, q sqlx.QueryerContext, ownerID, lock string) (*models.UserConfig, error) {
	doc, err := getDocument(ctx, q,
		db.q(`SELECT document FROM user_configs WHERE owner_id = ?`+lock), ownerID)
	if errors.Is(err, ErrNotFound) {
		return models.NewUserConfig(ownerID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	// Go Pattern: unmarshal over the defaults so absent fields keep them
	cfg := models.NewUserConfig(ownerID)
	if err := json.Unmarshal(doc, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode settings document: %w", err)
	}
	cfg.OwnerID = ownerID

	if err := db.openSecrets(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UpdateUserConfig applies fn to the owner's settings inside one transaction
// and stores the result (merge semantics: only what fn changes is changed).
// If fn fails nothing is written and its error is returned as is.
func (db *DB) UpdateUserConfig(ctx context.Context, ownerID string, fn func(c *models.UserConfig) error) (*models.UserConfig, error) {
	var updated *models.UserConfig
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		cfg, err := db.getUserConfig(ctx, tx, ownerID, db.forUpdate())
		if err != nil {
			return err
		}
		if err := fn(cfg); err != nil {
			return err
		}
		cfg.OwnerID = ownerID
		cfg.UpdatedAt = time.Now().UTC()

		sealed, err := db.sealSecrets(*cfg)
		if err != nil {
			return err
		}
		doc, err := json.Marshal(sealed)
		if err != nil {
			return fmt.Errorf("failed to encode settings: %w", err)
		}
		if _, err := tx.ExecContext(ctx, db.q(upsertConfigSQL), ownerID, string(doc), cfg.UpdatedAt); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		updated = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// secretFields lists the settings fields sealed at rest.
func secretFields(c *models.UserConfig) []*string {
	return []*string{
		&c.GeminiAPIKey,
		&c.PixabayKey,
		&c.FreesoundKey,
		&c.AWSSecretAccessKey,
		&c.RenderBackendAPIKey,
	}
}

// sealSecrets returns a copy of c with every secret field sealed.
func (db *DB) sealSecrets(c models.UserConfig) (models.UserConfig, error) {
	if db.sealer == nil {
		return c, nil
	}
	for _, field := range secretFields(&c) {
		sealed, err := db.sealer.Seal(*field)
		if err != nil {
			return c, fmt.Errorf("failed to seal settings: %w", err)
		}
		*field = sealed
	}
	return c, nil
}

func (db *DB) openSecrets(c *models.UserConfig) error {
	if db.sealer == nil {
		return nil
	}
	for _, field := range secretFields(c) {
		plain, err := db.sealer.Open(*field)
		if err != nil {
			return fmt.Errorf("failed to open settings: %w", err)
		}
		*field = plain
	}
	return nil
}
