package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/gesturenote/internal/dataset"
	"github.com/ayusman/gesturenote/internal/detector"
	"github.com/ayusman/gesturenote/internal/feature"
	"github.com/ayusman/gesturenote/internal/gesture"
	"github.com/ayusman/gesturenote/internal/store"
)

// setupEnv points the CLI at a fresh database and returns its path.
func setupEnv(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "gesturenote.db")
	t.Setenv("GESTURENOTE_DB_PATH", dbPath)
	t.Setenv("GESTURENOTE_LOG_LEVEL", "error")
	t.Setenv("GESTURENOTE_SHOW_WINDOW", "false")
	return dbPath
}

func twoClassDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds := &dataset.Dataset{}
	for i := 0; i < 10; i++ {
		palm := detector.Shifted(detector.OpenPalmLandmarks(), 0.005*float64(i), 0)
		thumb := detector.Shifted(detector.ThumbsUpLandmarks(), 0.005*float64(i), 0)
		require.NoError(t, ds.Add(feature.FromLandmarks(&palm), "next note"))
		require.NoError(t, ds.Add(feature.FromLandmarks(&thumb), "prev note"))
	}
	return ds
}

func TestRun_Usage(t *testing.T) {
	setupEnv(t)
	var out bytes.Buffer

	assert.ErrorIs(t, run(context.Background(), nil, &out), errUsage)
	assert.ErrorIs(t, run(context.Background(), []string{"dance"}, &out), errUsage)
}

func TestRun_InvalidEnvironment(t *testing.T) {
	setupEnv(t)
	t.Setenv("GESTURENOTE_TREES", "0")

	err := run(context.Background(), []string{"models"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_TrainAndList(t *testing.T) {
	dbPath := setupEnv(t)

	st, err := store.New(dbPath)
	require.NoError(t, err)
	rec, err := saveDataset(st, "./data", twoClassDataset(t), dataset.Report{})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	modelFile := filepath.Join(t.TempDir(), "model.json")
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"train", "-trees", "5", "-seed", "3", "-out", modelFile}, &out))
	assert.Contains(t, out.String(), "% of samples were classified correctly!")

	f, err := os.Open(modelFile)
	require.NoError(t, err)
	defer f.Close()
	model, err := gesture.DecodeModel(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"next note", "prev note"}, model.Labels)

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"models"}, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], rec.ID)
}

func TestRun_TrainFromFile(t *testing.T) {
	setupEnv(t)

	var buf bytes.Buffer
	require.NoError(t, twoClassDataset(t).Encode(&buf))
	in := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(in, buf.Bytes(), 0644))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"train", "-in", in, "-trees", "5"}, &out))
	assert.Contains(t, out.String(), "model ")
}

func TestRun_TrainWithoutDataset(t *testing.T) {
	setupEnv(t)

	err := run(context.Background(), []string{"train"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRun_ModelsEmpty(t *testing.T) {
	setupEnv(t)
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"models"}, &out))
	assert.Equal(t, "no models\n", out.String())
}

func TestRun_DetectWithoutModel(t *testing.T) {
	setupEnv(t)

	err := run(context.Background(), []string{"detect", "-addr", ""}, &bytes.Buffer{})
	assert.ErrorIs(t, err, gesture.ErrModelLoad)
}

func TestRun_BadFlag(t *testing.T) {
	setupEnv(t)
	err := run(context.Background(), []string{"train", "-bogus"}, &bytes.Buffer{})
	assert.Error(t, err)
}
