package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/conform/pkg/domain"
)

var extensions = map[string]domain.Format{
	".yaml": domain.FormatYAML,
	".yml":  domain.FormatYAML,
	".json": domain.FormatJSON,
}

// Repository implements ports.DefinitionRepository on a directory.
// Each definition is a single file named after it: <name>.yaml or <name>.json.
// Hand-written .yml files are read as well.
type Repository struct {
	dir string
}

// New creates a repository rooted at dir. The directory is created on first Save.
func New(dir string) *Repository {
	return &Repository{dir: dir}
}

// Save writes the definition atomically (temp file + rename) and drops any
// copy stored under another extension.
func (r *Repository) Save(ctx context.Context, def domain.Definition) error {
	if err := domain.ValidateName(def.Name); err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create definitions dir: %w", err)
	}

	format := def.Format
	if format == "" {
		format = domain.DetectFormat(def.Source)
	}
	target := filepath.Join(r.dir, def.Name+"."+string(format))

	tmp, err := os.CreateTemp(r.dir, "."+def.Name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(def.Source); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write definition: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("failed to move definition into place: %w", err)
	}
	if !def.UpdatedAt.IsZero() {
		_ = os.Chtimes(target, def.UpdatedAt, def.UpdatedAt)
	}

	for ext := range extensions {
		other := filepath.Join(r.dir, def.Name+ext)
		if other != target {
			_ = os.Remove(other)
		}
	}
	return nil
}

// Get reads the definition file for name.
func (r *Repository) Get(ctx context.Context, name string) (domain.Definition, error) {
	path, format, err := r.locate(name)
	if err != nil {
		return domain.Definition{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Definition{}, domain.ErrDefinitionNotFound
		}
		return domain.Definition{}, fmt.Errorf("failed to read definition: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return domain.Definition{}, fmt.Errorf("failed to stat definition: %w", err)
	}

	return domain.Definition{
		Name:      name,
		Format:    format,
		Source:    data,
		UpdatedAt: info.ModTime().UTC(),
	}, nil
}

// Delete removes every file stored for name.
func (r *Repository) Delete(ctx context.Context, name string) error {
	if _, _, err := r.locate(name); err != nil {
		return err
	}
	for ext := range extensions {
		if err := os.Remove(filepath.Join(r.dir, name+ext)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete definition: %w", err)
		}
	}
	return nil
}

// List returns the names of the definition files in the directory.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if _, ok := extensions[ext]; !ok {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// locate finds the file backing name, preferring .yaml, then .yml, then .json.
func (r *Repository) locate(name string) (string, domain.Format, error) {
	if domain.ValidateName(name) != nil {
		return "", "", domain.ErrDefinitionNotFound
	}
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(r.dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, extensions[ext], nil
		}
	}
	return "", "", domain.ErrDefinitionNotFound
}
