package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Model is a stored trained classifier. Data holds the encoded model blob and
// is left empty by List.
type Model struct {
	ID        string    `json:"id"`
	DatasetID string    `json:"dataset_id,omitempty"`
	Accuracy  float64   `json:"accuracy"`
	TrainSize int       `json:"train_size"`
	TestSize  int       `json:"test_size"`
	Trees     int       `json:"trees"`
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// ModelRepository provides CRUD operations for models.
type ModelRepository struct {
	db *sql.DB
}

// Models returns the model repository for this store.
func (s *Store) Models() *ModelRepository {
	return &ModelRepository{db: s.db}
}

const modelColumns = `id, dataset_id, accuracy, train_size, test_size, trees`

// Create inserts a new model. A missing ID is filled with a random UUID.
// DatasetID may be empty for models trained outside the registry.
func (r *ModelRepository) Create(m *Model) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now()

	var datasetID sql.NullString
	if m.DatasetID != "" {
		datasetID = sql.NullString{String: m.DatasetID, Valid: true}
	}

	_, err := r.db.Exec(
		`INSERT INTO models (id, dataset_id, accuracy, train_size, test_size, trees, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, datasetID, m.Accuracy, m.TrainSize, m.TestSize, m.Trees, m.Data, m.CreatedAt,
	)
	return err
}

// GetByID retrieves a model, including its blob, by ID.
func (r *ModelRepository) GetByID(id string) (*Model, error) {
	return scanModel(r.db.QueryRow(
		`SELECT `+modelColumns+`, data, created_at FROM models WHERE id = ?`,
		id,
	))
}

// Latest retrieves the most recently trained model, including its blob.
func (r *ModelRepository) Latest() (*Model, error) {
	return scanModel(r.db.QueryRow(
		`SELECT ` + modelColumns + `, data, created_at FROM models
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	))
}

func scanModel(row *sql.Row) (*Model, error) {
	m := &Model{}
	var datasetID sql.NullString

	err := row.Scan(&m.ID, &datasetID, &m.Accuracy, &m.TrainSize, &m.TestSize, &m.Trees, &m.Data, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	m.DatasetID = datasetID.String
	return m, nil
}

// List retrieves model metadata, newest first. Blobs are not loaded.
func (r *ModelRepository) List() ([]*Model, error) {
	return r.list(`SELECT `+modelColumns+`, created_at FROM models
		 ORDER BY created_at DESC, rowid DESC`)
}

// ListByDataset retrieves metadata for the models trained from one dataset.
func (r *ModelRepository) ListByDataset(datasetID string) ([]*Model, error) {
	return r.list(`SELECT `+modelColumns+`, created_at FROM models
		 WHERE dataset_id = ? ORDER BY created_at DESC, rowid DESC`, datasetID)
}

func (r *ModelRepository) list(query string, args ...interface{}) ([]*Model, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []*Model
	for rows.Next() {
		m := &Model{}
		var datasetID sql.NullString

		if err := rows.Scan(&m.ID, &datasetID, &m.Accuracy, &m.TrainSize, &m.TestSize, &m.Trees, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.DatasetID = datasetID.String
		models = append(models, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return models, nil
}

// Delete removes a model by its ID.
func (r *ModelRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM models WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}
