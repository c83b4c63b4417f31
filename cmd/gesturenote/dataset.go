package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/gesturenote/internal/capture"
	"github.com/ayusman/gesturenote/internal/config"
	"github.com/ayusman/gesturenote/internal/dataset"
	"github.com/ayusman/gesturenote/internal/detector"
	"github.com/ayusman/gesturenote/internal/feature"
	"github.com/ayusman/gesturenote/internal/store"
)

// newDetector starts the MediaPipe landmark service.
func newDetector(cfg *config.Config) (detector.Detector, error) {
	dc := detector.DefaultConfig()
	dc.MinConfidence = cfg.MinConfidence
	d, err := detector.NewMediaPipeDetector(dc)
	if err != nil {
		return nil, fmt.Errorf("hand detector unavailable: %w", err)
	}
	return d, nil
}

// runDataset extracts feature vectors from every sample and stores the dataset.
func runDataset(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("dataset", flag.ContinueOnError)
	fs.SetOutput(stdout)
	dataDir := fs.String("data", cfg.DataDir, "sample root directory")
	out := fs.String("out", "", "also write the dataset blob to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d, err := newDetector(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	ds, report, err := dataset.NewBuilder(capture.NewSampleStore(*dataDir), feature.NewExtractor(d)).Build(ctx)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := saveDataset(st, *dataDir, ds, report)
	if err != nil {
		return err
	}
	if *out != "" {
		if err := os.WriteFile(*out, rec.Data, 0644); err != nil {
			return fmt.Errorf("write dataset: %w", err)
		}
	}

	fmt.Fprintf(stdout, "dataset %s: %d samples, %d skipped (%d no hand, %d rejected, %d failed)\n",
		rec.ID, report.Retained, report.Skipped(), report.NoHand, report.Rejected, report.Failed)
	for _, class := range ds.Classes() {
		fmt.Fprintf(stdout, "  %-12s %d\n", class, report.PerClass[class])
	}
	return nil
}

// saveDataset encodes ds and stores it with its build report.
func saveDataset(st *store.Store, root string, ds *dataset.Dataset, report dataset.Report) (*store.Dataset, error) {
	var buf bytes.Buffer
	if err := ds.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}

	rec := &store.Dataset{
		SampleRoot: root,
		Samples:    ds.Len(),
		Skipped:    report.Skipped(),
		Classes:    ds.Classes(),
		Data:       buf.Bytes(),
	}
	if err := st.Datasets().Create(rec); err != nil {
		return nil, fmt.Errorf("store dataset: %w", err)
	}
	log.Info().Str("id", rec.ID).Int("samples", rec.Samples).Msg("dataset stored")
	return rec, nil
}
