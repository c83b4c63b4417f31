package dataset

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/gesturenote/internal/capture"
	"github.com/ayusman/gesturenote/internal/feature"
)

// Report summarizes a build.
type Report struct {
	Samples  int            // image files visited
	Retained int            // pairs added to the dataset
	NoHand   int            // skipped: no hand detected
	Rejected int            // skipped: wrong feature cardinality
	Failed   int            // skipped: unreadable image or detector error
	PerClass map[string]int // retained pairs per label
}

// Skipped returns the number of samples that did not make it into the dataset.
func (r Report) Skipped() int {
	return r.NoHand + r.Rejected + r.Failed
}

// Builder runs every sample of a SampleStore through a feature Extractor.
type Builder struct {
	store     *capture.SampleStore
	extractor *feature.Extractor
}

// NewBuilder creates a Builder.
func NewBuilder(store *capture.SampleStore, extractor *feature.Extractor) *Builder {
	return &Builder{store: store, extractor: extractor}
}

// Build walks classes and their samples in name order and returns the
// resulting dataset. Samples without a valid feature vector are skipped and
// counted; they never enter the dataset. Only listing failures and context
// cancellation are fatal.
func (b *Builder) Build(ctx context.Context) (*Dataset, Report, error) {
	report := Report{PerClass: make(map[string]int)}
	ds := &Dataset{}

	classes, err := b.store.Classes()
	if err != nil {
		return nil, report, err
	}

	for _, class := range classes {
		paths, err := b.store.Samples(class)
		if err != nil {
			return nil, report, err
		}

		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, report, err
			}
			report.Samples++

			v, err := b.extract(path)
			switch {
			case errors.Is(err, feature.ErrNoHand):
				report.NoHand++
				continue
			case errors.Is(err, feature.ErrWrongCardinality):
				report.Rejected++
				log.Debug().Str("sample", path).Int("length", len(v)).Msg("rejected sample")
				continue
			case err != nil:
				report.Failed++
				log.Warn().Err(err).Str("sample", path).Msg("skipping sample")
				continue
			}

			if err := ds.Add(v, class); err != nil {
				return nil, report, err
			}
			report.Retained++
			report.PerClass[class]++
		}

		log.Info().Str("class", class).Int("retained", report.PerClass[class]).Int("samples", len(paths)).Msg("class processed")
	}

	return ds, report, nil
}

func (b *Builder) extract(path string) (feature.Vector, error) {
	img, err := b.store.Load(path)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	v, _, err := b.extractor.Extract(img)
	if err != nil {
		return nil, err
	}
	return v, feature.Validate(v)
}
