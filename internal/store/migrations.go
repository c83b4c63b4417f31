package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Datasets table - encoded feature datasets built from a sample root
		`CREATE TABLE IF NOT EXISTS datasets (
			id TEXT PRIMARY KEY,
			sample_root TEXT NOT NULL,
			samples INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			classes TEXT NOT NULL DEFAULT '[]',
			data BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Models table - trained classifiers and their held-out evaluation
		`CREATE TABLE IF NOT EXISTS models (
			id TEXT PRIMARY KEY,
			dataset_id TEXT REFERENCES datasets(id) ON DELETE CASCADE,
			accuracy REAL NOT NULL CHECK(accuracy >= 0 AND accuracy <= 1),
			train_size INTEGER NOT NULL,
			test_size INTEGER NOT NULL,
			trees INTEGER NOT NULL,
			data BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_models_dataset_id ON models(dataset_id)`,
		`CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_models_created_at ON models(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
