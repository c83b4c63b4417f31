package capture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gocv.io/x/gocv"
)

// DefaultSampleExt is the file extension used when saving samples.
const DefaultSampleExt = ".jpg"

// ErrInvalidClass is returned for class labels that cannot be used as a
// directory name.
var ErrInvalidClass = errors.New("invalid class label")

// SampleStore is the on-disk layout of labeled samples: one directory per
// class under Root, named after the label, holding one image per sample.
type SampleStore struct {
	Root string
	Ext  string
}

// NewSampleStore returns a SampleStore rooted at dir.
func NewSampleStore(dir string) *SampleStore {
	return &SampleStore{Root: dir, Ext: DefaultSampleExt}
}

// Classes lists class labels (directory names) sorted by name. Regular files
// and hidden directories at the root are ignored.
func (s *SampleStore) Classes() ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("read sample root: %w", err)
	}

	var classes []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		classes = append(classes, entry.Name())
	}
	sort.Strings(classes)

	return classes, nil
}

// Samples lists the sample file paths of a class sorted by file name.
func (s *SampleStore) Samples(class string) ([]string, error) {
	dir, err := s.classDir(class)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read class %q: %w", class, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	return paths, nil
}

// Count returns the number of samples stored for a class. A class without a
// directory has zero samples.
func (s *SampleStore) Count(class string) (int, error) {
	paths, err := s.Samples(class)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return len(paths), nil
}

// Load reads a sample image as a BGR Mat. The caller must Close it.
func (s *SampleStore) Load(path string) (*gocv.Mat, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("decode image %s", path)
	}
	return &mat, nil
}

// Save writes frame as sample number index of class and returns its path.
// The class directory is created on demand.
func (s *SampleStore) Save(class string, index int, frame *gocv.Mat) (string, error) {
	dir, err := s.classDir(class)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create class directory: %w", err)
	}

	ext := s.Ext
	if ext == "" {
		ext = DefaultSampleExt
	}

	path := filepath.Join(dir, fmt.Sprintf("%d%s", index, ext))
	if ok := gocv.IMWrite(path, *frame); !ok {
		return "", fmt.Errorf("write image %s", path)
	}

	return path, nil
}

func (s *SampleStore) classDir(class string) (string, error) {
	if class == "" || class == "." || class == ".." || strings.ContainsAny(class, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidClass, class)
	}
	return filepath.Join(s.Root, class), nil
}
