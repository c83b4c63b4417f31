package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

// maxConsecutiveReadErrors bounds how many failed reads in a row the
// collector tolerates before giving up on a device.
const maxConsecutiveReadErrors = 50

// Collector records labeled samples from a camera into a SampleStore.
type Collector struct {
	camera Camera
	store  *SampleStore

	// Ready is called before each class is recorded and blocks until the
	// operator is in position. A nil Ready starts immediately.
	Ready func(ctx context.Context, class string) error

	// Preview receives every captured frame before it is saved.
	Preview func(frame *gocv.Mat)

	// Interval is the pause between consecutive samples.
	Interval time.Duration
}

// NewCollector creates a Collector writing frames from camera into store.
func NewCollector(camera Camera, store *SampleStore) *Collector {
	return &Collector{
		camera:   camera,
		store:    store,
		Interval: 25 * time.Millisecond,
	}
}

// Collect records perClass samples for every class, numbered from 0. Existing
// samples with the same numbers are overwritten.
func (c *Collector) Collect(ctx context.Context, classes []string, perClass int) error {
	if perClass <= 0 {
		return fmt.Errorf("samples per class must be positive, got %d", perClass)
	}

	if err := c.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer c.camera.Close()

	for _, class := range classes {
		log.Info().Str("class", class).Int("samples", perClass).Msg("collecting samples")

		if c.Ready != nil {
			if err := c.Ready(ctx, class); err != nil {
				return err
			}
		}

		if err := c.collectClass(ctx, class, perClass); err != nil {
			return fmt.Errorf("collect %q: %w", class, err)
		}
	}

	return nil
}

func (c *Collector) collectClass(ctx context.Context, class string, perClass int) error {
	failures := 0
	for counter := 0; counter < perClass; {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := c.camera.ReadFrame()
		if err != nil {
			if errors.Is(err, ErrEndOfStream) || errors.Is(err, ErrCameraNotOpen) {
				return err
			}
			failures++
			if failures >= maxConsecutiveReadErrors {
				return fmt.Errorf("camera keeps failing: %w", err)
			}
			log.Warn().Err(err).Msg("failed to capture image")
			continue
		}
		failures = 0

		if c.Preview != nil {
			c.Preview(frame)
		}

		_, err = c.store.Save(class, counter, frame)
		frame.Close()
		if err != nil {
			return err
		}
		counter++

		if c.Interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.Interval):
			}
		}
	}
	return nil
}
