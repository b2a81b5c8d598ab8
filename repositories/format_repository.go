package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/courtside/matchday/models"
)

var ErrFormatNotConfigured = errors.New("no format configuration saved")

// FormatRepository stores the single active format configuration of the
// event. Saving replaces whatever was active before.
type FormatRepository interface {
	Save(ctx context.Context, exec SQLExecutor, config models.FormatConfig) error
	Get(ctx context.Context) (*models.FormatConfig, error)
}

type postgresFormatRepository struct {
	db *sql.DB
}

func NewPostgresFormatRepository(db *sql.DB) FormatRepository {
	return &postgresFormatRepository{db: db}
}

func (r *postgresFormatRepository) Save(ctx context.Context, exec SQLExecutor, config models.FormatConfig) error {
	encoded, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode format configuration: %w", err)
	}

	query := `
		INSERT INTO format_config (id, config)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET config = EXCLUDED.config, updated_at = NOW()`

	if _, err := exec.ExecContext(ctx, query, encoded); err != nil {
		return fmt.Errorf("failed to save format configuration: %w", err)
	}
	return nil
}

func (r *postgresFormatRepository) Get(ctx context.Context) (*models.FormatConfig, error) {
	var encoded []byte
	err := r.db.QueryRowContext(ctx, `SELECT config FROM format_config WHERE id = 1`).Scan(&encoded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormatNotConfigured
		}
		return nil, fmt.Errorf("failed to load format configuration: %w", err)
	}

	config := &models.FormatConfig{}
	if err := json.Unmarshal(encoded, config); err != nil {
		return nil, fmt.Errorf("failed to decode format configuration: %w", err)
	}
	return config, nil
}
