package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Overrides is a user-editable map of base symbol to round-turn fee,
// persisted as a yaml file. It replaces the table fee (including the NFA
// surcharge) outright for the symbols it names.
//
// Mutations are last-writer-wins; callers needing concurrent access must
// serialize around it.
type Overrides struct {
	path string
	fees map[string]float64
}

// LoadOverrides reads the override file at path. A missing file is not an
// error and yields an empty store.
func LoadOverrides(path string) (*Overrides, error) {
	o := &Overrides{path: path, fees: map[string]float64{}}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return o, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading fee overrides: %w", err)
	}
	if err := yaml.Unmarshal(data, &o.fees); err != nil {
		return nil, fmt.Errorf("parsing fee overrides: %w", err)
	}
	return o, nil
}

// Save writes the current mapping back to the file it was loaded from.
func (o *Overrides) Save() error {
	data, err := yaml.Marshal(o.fees)
	if err != nil {
		return fmt.Errorf("encoding fee overrides: %w", err)
	}
	if dir := filepath.Dir(o.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating override dir: %w", err)
		}
	}
	if err := os.WriteFile(o.path, data, 0o644); err != nil {
		return fmt.Errorf("writing fee overrides: %w", err)
	}
	return nil
}

func (o *Overrides) Get(base string) (float64, bool) {
	fee, ok := o.fees[base]
	return fee, ok
}

func (o *Overrides) Set(base string, fee float64) {
	o.fees[base] = fee
}

func (o *Overrides) Remove(base string) {
	delete(o.fees, base)
}

// List returns the overridden symbols in sorted order.
func (o *Overrides) List() []string {
	syms := make([]string, 0, len(o.fees))
	for s := range o.fees {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}
