package baseline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ErrBaselineNotFound is returned when a baseline doesn't exist.
var ErrBaselineNotFound = errors.New("baseline not found")

// ErrInvalidName is returned for names that cannot map onto a single file
// in the store directory.
var ErrInvalidName = errors.New("invalid baseline name")

// DirEnvVar overrides the baseline directory.
const DirEnvVar = "CINDERAPI_BASELINE_DIR"

const (
	dirMode  = 0700
	fileMode = 0600
	fileExt  = ".json"
)

// Names start with a letter or digit; dots are allowed after that, so
// "." and ".." never qualify.
var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Store keeps baselines as private JSON files, one per name, in Dir.
type Store struct {
	Dir string
}

// NewStore creates a store with the given directory.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// DefaultDir returns ~/.cinderapi/baselines, or a relative path when the
// home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cinderapi", "baselines")
	}
	return filepath.Join(home, ".cinderapi", "baselines")
}

// ResolveDir returns the directory named by CINDERAPI_BASELINE_DIR, or the
// default. An empty value counts as unset.
func ResolveDir(environ []string) string {
	dir := ""
	for _, env := range environ {
		if v, ok := strings.CutPrefix(env, DirEnvVar+"="); ok {
			dir = v
		}
	}
	if dir == "" {
		return DefaultDir()
	}
	return dir
}

// CheckName reports whether name can be used as a baseline name.
func CheckName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w %q: use letters, digits, '.', '_' or '-'", ErrInvalidName, name)
	}
	return nil
}

// Save stores a baseline under its name, replacing any previous one. The
// file is written to a temporary name first and renamed into place.
func (s *Store) Save(b Baseline) error {
	path, err := s.path(b.Name)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode baseline %s: %w", b.Name, err)
	}

	if err := os.MkdirAll(s.Dir, dirMode); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.Dir, "."+b.Name+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load retrieves a baseline by name.
func (s *Store) Load(name string) (Baseline, error) {
	path, err := s.path(name)
	if err != nil {
		return Baseline{}, err
	}
	return readBaseline(path)
}

// List returns summaries of all stored baselines sorted by name. Files that
// cannot be read or decoded are skipped.
func (s *Store) List() ([]BaselineSummary, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return []BaselineSummary{}, nil
	}
	if err != nil {
		return nil, err
	}

	summaries := []BaselineSummary{}
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), fileExt)
		if entry.IsDir() || !ok || CheckName(name) != nil {
			continue
		}

		b, err := readBaseline(filepath.Join(s.Dir, entry.Name()))
		if err != nil {
			continue
		}
		summaries = append(summaries, b.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

// Delete removes a baseline by name.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrBaselineNotFound
		}
		return err
	}
	return nil
}

func (s *Store) path(name string) (string, error) {
	if err := CheckName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, name+fileExt), nil
}

func readBaseline(path string) (Baseline, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Baseline{}, ErrBaselineNotFound
	}
	if err != nil {
		return Baseline{}, err
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return Baseline{}, fmt.Errorf("cannot decode baseline %s: %w", filepath.Base(path), err)
	}
	return b, nil
}
