package image

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"elysian-scribe/internal/logging"

	"github.com/sirupsen/logrus"
)

// StoreState is Empty or Loaded.
type StoreState int

const (
	StateEmpty StoreState = iota
	StateLoaded
)

func (s StoreState) String() string {
	if s == StateLoaded {
		return "Loaded"
	}
	return "Empty"
}

// StoreOptions configures a Store.
type StoreOptions struct {
	MaxDimension int
	JPEGQuality  int
	Logger       *logrus.Logger
}

// Store owns the navigation sequence of a folder and the image pair of the
// current entry.
type Store struct {
	dir     string
	files   []string
	index   int
	pair    *Pair
	maxDim  int
	quality int
	logger  *logrus.Logger

	// BeforeNavigate is called with the current file name before the index
	// changes, so pending edits can be persisted.
	BeforeNavigate func(name string)
}

// NewStore creates an empty store.
func NewStore(opts StoreOptions) *Store {
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultMaxDimension
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = DefaultJPEGQuality
	}
	return &Store{
		index:   -1,
		maxDim:  opts.MaxDimension,
		quality: opts.JPEGQuality,
		logger:  logging.OrDiscard(opts.Logger),
	}
}

// OpenFolder replaces the navigation sequence with the decodable images in
// dir, sorted by name, and loads the first one that decodes fully.
func (s *Store) OpenFolder(dir string) error {
	files, err := s.enumerate(dir)
	if err != nil {
		return err
	}

	if s.State() == StateLoaded {
		s.persist()
	}
	s.dir = dir
	s.files = files
	s.index = -1
	s.pair = nil

	s.logger.WithFields(logrus.Fields{"folder": dir, "images": len(files)}).Info("Opened folder")
	if len(files) == 0 {
		return nil
	}
	if _, err := s.loadFrom(0, 1); err != nil {
		return err
	}
	return nil
}

// Rescan re-enumerates the open folder, keeping the current entry loaded when
// it still exists. It reports whether the current entry had to change.
func (s *Store) Rescan() (bool, error) {
	if s.dir == "" {
		return false, nil
	}
	current := s.CurrentName()
	files, err := s.enumerate(s.dir)
	if err != nil {
		return false, err
	}

	i := sort.SearchStrings(files, current)
	if current != "" && i < len(files) && files[i] == current {
		s.files = files
		s.index = i
		return false, nil
	}

	if current != "" {
		s.persist()
	}
	s.files = files
	s.index = -1
	s.pair = nil
	if len(files) == 0 {
		return true, nil
	}
	_, err = s.loadFrom(min(i, len(files)-1), 1)
	return true, err
}

func (s *Store) enumerate(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsSupportedFormat(e.Name()) {
			continue
		}
		if _, err := Probe(filepath.Join(dir, e.Name())); err != nil {
			s.logger.WithFields(logrus.Fields{"file": e.Name(), "error": err}).Warn("Skipping unreadable image")
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

// State returns Empty or Loaded.
func (s *Store) State() StoreState {
	if s.index < 0 || s.pair == nil {
		return StateEmpty
	}
	return StateLoaded
}

// Next moves to the next entry. At the last index it is a no-op.
func (s *Store) Next() (bool, error) {
	return s.move(1)
}

// Previous moves to the previous entry. At index 0 it is a no-op.
func (s *Store) Previous() (bool, error) {
	return s.move(-1)
}

// GoTo jumps to entry i. Out-of-range indices and the current index are no-ops.
func (s *Store) GoTo(i int) (bool, error) {
	if i < 0 || i >= len(s.files) || i == s.index {
		return false, nil
	}
	s.persist()
	ok, err := s.loadFrom(i, sign(i-s.index))
	return ok, err
}

func (s *Store) move(delta int) (bool, error) {
	if s.State() != StateLoaded {
		return false, nil
	}
	next := s.index + delta
	if next < 0 || next >= len(s.files) {
		return false, nil
	}
	s.persist()
	return s.loadFrom(next, delta)
}

// loadFrom loads entry i, stepping by dir past entries that fail to decode.
// The index only changes when something loads.
func (s *Store) loadFrom(i, dir int) (bool, error) {
	var lastErr error
	for ; i >= 0 && i < len(s.files); i += dir {
		pair, err := LoadPair(filepath.Join(s.dir, s.files[i]), s.maxDim)
		if err != nil {
			s.logger.WithFields(logrus.Fields{"file": s.files[i], "error": err}).Warn("Skipping image that failed to load")
			lastErr = err
			continue
		}
		s.index = i
		s.pair = pair
		s.logger.WithFields(logrus.Fields{
			"file":  s.files[i],
			"index": i,
			"scale": pair.ScaleToOriginal(),
		}).Debug("Loaded image")
		return true, nil
	}
	if lastErr == nil {
		lastErr = ErrUnsupportedFormat
	}
	return false, lastErr
}

func (s *Store) persist() {
	if s.BeforeNavigate != nil && s.index >= 0 && s.index < len(s.files) {
		s.BeforeNavigate(s.files[s.index])
	}
}

// OverwriteCurrent replaces the current file on disk with img encoded as
// JPEG and swaps in a working copy built from img. The new pair is built
// before anything is written, and the write goes through a temporary file in
// the same folder, so any failure leaves both the file and the loaded pair
// intact.
func (s *Store) OverwriteCurrent(img image.Image) error {
	if s.State() != StateLoaded {
		return ErrNoImage
	}
	if img == nil {
		return fmt.Errorf("%w: nothing to write", ErrDestructiveWrite)
	}
	path := s.CurrentPath()
	next, err := NewPair(path, img, s.maxDim)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDestructiveWrite, err)
	}
	if err := writeReplacing(path, img, s.quality); err != nil {
		s.logger.WithFields(logrus.Fields{"file": path, "error": err}).Error("Crop overwrite failed")
		return fmt.Errorf("%w: %v", ErrDestructiveWrite, err)
	}
	s.pair = next
	b := img.Bounds()
	s.logger.WithFields(logrus.Fields{"file": path, "width": b.Dx(), "height": b.Dy()}).Info("Original overwritten")
	return nil
}

func writeReplacing(path string, img image.Image, quality int) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".scribe-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()
	if err = EncodeJPEG(tmp, img, quality); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if info, statErr := os.Stat(path); statErr == nil {
		_ = os.Chmod(tmp.Name(), info.Mode().Perm())
	}
	return os.Rename(tmp.Name(), path)
}

// Current returns the current pair, or nil.
func (s *Store) Current() *Pair {
	return s.pair
}

// Index returns the current index, or -1 when empty.
func (s *Store) Index() int {
	if s.State() != StateLoaded {
		return -1
	}
	return s.index
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.files)
}

// Dir returns the open folder.
func (s *Store) Dir() string {
	return s.dir
}

// Files returns a copy of the entry names.
func (s *Store) Files() []string {
	return append([]string(nil), s.files...)
}

// Snapshot returns the full paths of all entries, independent of the store.
func (s *Store) Snapshot() []string {
	paths := make([]string, len(s.files))
	for i, f := range s.files {
		paths[i] = filepath.Join(s.dir, f)
	}
	return paths
}

// CurrentName returns the current file name.
func (s *Store) CurrentName() string {
	if s.State() != StateLoaded {
		return ""
	}
	return s.files[s.index]
}

// CurrentPath returns the current file path.
func (s *Store) CurrentPath() string {
	if s.State() != StateLoaded {
		return ""
	}
	return filepath.Join(s.dir, s.files[s.index])
}

func sign(n int) int {
	if n < 0 {
		return -1
	}
	return 1
}
