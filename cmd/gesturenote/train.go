package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/gesturenote/internal/config"
	"github.com/ayusman/gesturenote/internal/dataset"
	"github.com/ayusman/gesturenote/internal/gesture"
	"github.com/ayusman/gesturenote/internal/store"
)

// runTrain fits a model on a stored dataset (or a dataset file) and stores it.
func runTrain(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(stdout)
	datasetID := fs.String("dataset", "", "dataset id (default: latest)")
	in := fs.String("in", "", "read the dataset blob from this file instead of the store")
	out := fs.String("out", "", "also write the model blob to this file")
	trees := fs.Int("trees", cfg.Trees, "number of trees")
	seed := fs.Int64("seed", cfg.Seed, "split seed, 0 for time based")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ds, sourceID, err := loadDataset(st, *datasetID, *in)
	if err != nil {
		return err
	}

	model, eval, err := gesture.NewTrainer(gesture.TrainConfig{
		TestFraction: cfg.TestFraction,
		Trees:        *trees,
		Seed:         *seed,
	}).Train(ds)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := model.Encode(&buf); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	rec := &store.Model{
		DatasetID: sourceID,
		Accuracy:  eval.Accuracy,
		TrainSize: eval.TrainSize,
		TestSize:  eval.TestSize,
		Trees:     model.Trees(),
		Data:      buf.Bytes(),
	}
	if err := st.Models().Create(rec); err != nil {
		return fmt.Errorf("store model: %w", err)
	}
	if *out != "" {
		if err := os.WriteFile(*out, rec.Data, 0644); err != nil {
			return fmt.Errorf("write model: %w", err)
		}
	}

	log.Info().Str("id", rec.ID).Int64("seed", eval.Seed).Msg("model stored")
	fmt.Fprintf(stdout, "%g%% of samples were classified correctly!\n", eval.Accuracy*100)
	fmt.Fprintf(stdout, "model %s (train %d, test %d)\n", rec.ID, eval.TrainSize, eval.TestSize)
	return nil
}

// loadDataset reads the dataset from file, by id, or the latest stored one.
// The returned id is empty for file input.
func loadDataset(st *store.Store, id, file string) (*dataset.Dataset, string, error) {
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		ds, err := dataset.Decode(f)
		return ds, "", err
	}

	var (
		rec *store.Dataset
		err error
	)
	if id == "" {
		rec, err = st.Datasets().Latest()
	} else {
		rec, err = st.Datasets().GetByID(id)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", fmt.Errorf("no dataset found, run 'gesturenote dataset' first: %w", err)
	}
	if err != nil {
		return nil, "", err
	}

	ds, err := dataset.Decode(bytes.NewReader(rec.Data))
	if err != nil {
		return nil, "", fmt.Errorf("dataset %s: %w", rec.ID, err)
	}
	return ds, rec.ID, nil
}
