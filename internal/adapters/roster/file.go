// Package roster persists the employee directory as YAML and keeps it in sync with disk.
package roster

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"verlof/internal/domain/employee"
)

// File is the on-disk roster document.
type File struct {
	Employees []employee.Employee `yaml:"employees"`
}

// Decode parses a YAML roster.
func Decode(r io.Reader) ([]employee.Employee, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, employee.ErrEmptyRoster
		}
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	return f.Employees, nil
}

// Load reads the roster at path.
func Load(path string) ([]employee.Employee, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	return Decode(bytes.NewReader(data))
}

// Save writes list to path atomically (temp file + rename).
// PRE: list validates as a directory
func Save(path string, list []employee.Employee) error {
	if _, err := employee.NewDirectory(list); err != nil {
		return fmt.Errorf("refusing to save roster: %w", err)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(File{Employees: list}); err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create roster dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".roster-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp roster: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write roster: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace roster: %w", err)
	}
	return nil
}

// Open returns the directory for path. An empty path or a missing file yields the
// built-in default roster; a present but invalid file is an error.
func Open(path string) (*employee.Directory, error) {
	if path == "" {
		slog.Info("roster_event", "event", "default_roster", "employees", len(employee.DefaultRoster))
		return employee.NewDefaultDirectory(), nil
	}
	list, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("roster_event", "event", "roster_missing", "path", path)
		return employee.NewDefaultDirectory(), nil
	}
	if err != nil {
		return nil, err
	}
	dir, err := employee.NewDirectory(list)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	slog.Info("roster_event", "event", "roster_loaded", "path", path, "employees", dir.Len())
	return dir, nil
}
