package employee

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// Domain errors
var (
	ErrEmptyNumber     = errors.New("employee number is required")
	ErrEmptyName       = errors.New("employee name is required")
	ErrDuplicate       = errors.New("duplicate employee number")
	ErrEmptyRoster     = errors.New("roster contains no employees")
	ErrUnknownEmployee = errors.New("unknown employee number")
)

// Employee is a roster entry keyed by personnel number.
type Employee struct {
	Number string `yaml:"number" json:"number"`
	Name   string `yaml:"name" json:"name"`
	Email  string `yaml:"email,omitempty" json:"email,omitempty"`
}

// Validate checks that the Employee has a number and a name.
// PRE: none
// POST: returns nil if valid, error otherwise
func (e Employee) Validate() error {
	if strings.TrimSpace(e.Number) == "" {
		return ErrEmptyNumber
	}
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Directory is the in-memory roster. It is safe for concurrent use and can be
// swapped wholesale when the roster file changes.
type Directory struct {
	mu       sync.RWMutex
	byNumber map[string]Employee
	sorted   []Employee
}

// NewDirectory builds a directory from a list of employees.
// PRE: every employee validates; numbers are unique
// POST: returns a populated directory or the first validation error
func NewDirectory(list []Employee) (*Directory, error) {
	d := &Directory{}
	if err := d.Replace(list); err != nil {
		return nil, err
	}
	return d, nil
}

// Replace swaps the directory contents atomically.
// POST: on error the previous contents are kept
func (d *Directory) Replace(list []Employee) error {
	if len(list) == 0 {
		return ErrEmptyRoster
	}
	byNumber := make(map[string]Employee, len(list))
	sorted := make([]Employee, 0, len(list))
	for _, e := range list {
		e.Number = strings.TrimSpace(e.Number)
		e.Name = strings.TrimSpace(e.Name)
		e.Email = strings.TrimSpace(e.Email)
		if err := e.Validate(); err != nil {
			return err
		}
		if _, dup := byNumber[e.Number]; dup {
			return ErrDuplicate
		}
		byNumber[e.Number] = e
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	d.mu.Lock()
	d.byNumber = byNumber
	d.sorted = sorted
	d.mu.Unlock()
	return nil
}

// Lookup returns the employee with the given number.
func (d *Directory) Lookup(number string) (Employee, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.byNumber[strings.TrimSpace(number)]
	return e, ok
}

// NameFor returns the employee's name, or FallbackName when unknown.
func (d *Directory) NameFor(number string) string {
	if e, ok := d.Lookup(number); ok {
		return e.Name
	}
	return FallbackName(number)
}

// FallbackName is the display name for a number that is not on the roster.
func FallbackName(number string) string {
	return "Medewerker " + strings.TrimSpace(number)
}

// EmailFor returns the employee's email address, if the roster has one.
func (d *Directory) EmailFor(number string) string {
	e, _ := d.Lookup(number)
	return e.Email
}

// Search matches query against numbers (substring) and names (case-insensitive substring).
// An empty query matches nothing.
func (d *Directory) Search(query string) []Employee {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	lower := strings.ToLower(query)

	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []Employee
	for _, e := range d.sorted {
		if strings.Contains(e.Number, query) || strings.Contains(strings.ToLower(e.Name), lower) {
			out = append(out, e)
		}
	}
	return out
}

// All returns every employee ordered by number.
func (d *Directory) All() []Employee {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Employee, len(d.sorted))
	copy(out, d.sorted)
	return out
}

// Len returns the number of employees.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sorted)
}
