package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Dataset is a stored feature dataset. Data holds the encoded dataset blob and
// is left empty by List.
type Dataset struct {
	ID         string    `json:"id"`
	SampleRoot string    `json:"sample_root"`
	Samples    int       `json:"samples"`
	Skipped    int       `json:"skipped"`
	Classes    []string  `json:"classes"`
	Data       []byte    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// DatasetRepository provides CRUD operations for datasets.
type DatasetRepository struct {
	db *sql.DB
}

// Datasets returns the dataset repository for this store.
func (s *Store) Datasets() *DatasetRepository {
	return &DatasetRepository{db: s.db}
}

// Create inserts a new dataset. A missing ID is filled with a random UUID.
func (r *DatasetRepository) Create(d *Dataset) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now()

	classes, err := json.Marshal(d.Classes)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO datasets (id, sample_root, samples, skipped, classes, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.SampleRoot, d.Samples, d.Skipped, string(classes), d.Data, d.CreatedAt,
	)
	return err
}

// GetByID retrieves a dataset, including its blob, by ID.
func (r *DatasetRepository) GetByID(id string) (*Dataset, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, sample_root, samples, skipped, classes, data, created_at
		 FROM datasets WHERE id = ?`,
		id,
	))
}

// Latest retrieves the most recently created dataset, including its blob.
func (r *DatasetRepository) Latest() (*Dataset, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, sample_root, samples, skipped, classes, data, created_at
		 FROM datasets ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	))
}

func (r *DatasetRepository) scanOne(row *sql.Row) (*Dataset, error) {
	d := &Dataset{}
	var classes string

	err := row.Scan(&d.ID, &d.SampleRoot, &d.Samples, &d.Skipped, &classes, &d.Data, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(classes), &d.Classes); err != nil {
		return nil, err
	}
	return d, nil
}

// List retrieves dataset metadata, newest first. Blobs are not loaded.
func (r *DatasetRepository) List() ([]*Dataset, error) {
	rows, err := r.db.Query(
		`SELECT id, sample_root, samples, skipped, classes, created_at
		 FROM datasets ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var datasets []*Dataset
	for rows.Next() {
		d := &Dataset{}
		var classes string

		if err := rows.Scan(&d.ID, &d.SampleRoot, &d.Samples, &d.Skipped, &classes, &d.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(classes), &d.Classes); err != nil {
			return nil, err
		}
		datasets = append(datasets, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return datasets, nil
}

// Delete removes a dataset and every model trained from it.
func (r *DatasetRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}
