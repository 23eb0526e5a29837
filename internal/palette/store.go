package palette

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/pixel/internal/ctxlog"
	"github.com/vk/pixel/internal/fsutil"
)

// UnknownError is returned when a palette name is not in the store.
type UnknownError struct {
	Name string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown palette: %s", e.Name)
}

// Store holds palettes by name. It is filled once at startup and only read
// afterwards.
type Store struct {
	palettes map[string]*Palette
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{palettes: make(map[string]*Palette)}
}

// Add validates p and stores it, replacing any palette of the same name.
// The reserved names "auto" and "adaptive" are refused.
func (s *Store) Add(ctx context.Context, p *Palette) error {
	logger := ctxlog.FromContext(ctx)

	if IsReserved(p.Name) {
		return fmt.Errorf("palette name %q is reserved", p.Name)
	}
	if err := p.validate(); err != nil {
		return err
	}
	if prev, ok := s.palettes[p.Name]; ok {
		logger.Warn("Palette redefined, later definition wins.", "palette", p.Name, "previous", prev.Source, "source", p.Source)
	}
	s.palettes[p.Name] = p
	return nil
}

// Len returns the number of palettes.
func (s *Store) Len() int {
	return len(s.palettes)
}

// Names returns all palette names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.palettes))
	for name := range s.palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the palette registered under name.
func (s *Store) Lookup(name string) (*Palette, bool) {
	p, ok := s.palettes[name]
	return p, ok
}

// Resolve maps a --palette/--colors pair to the palette to quantize with.
// An empty name or "auto" yields nil: the image keeps its own colours.
func (s *Store) Resolve(name string, max int) (*Palette, error) {
	if name == "" || name == Auto {
		return nil, nil
	}
	p, ok := s.palettes[name]
	if !ok {
		return nil, &UnknownError{Name: name}
	}
	return p.Truncate(max), nil
}

// IsReserved reports whether name has a built-in meaning.
func IsReserved(name string) bool {
	return name == Auto || name == Adaptive
}

// Load builds a store from every *.json and *.hcl file below dir. A missing
// directory gives an empty store. Individual files that cannot be read or
// hold no usable palette are skipped and logged; they never fail the load.
func Load(ctx context.Context, dir string) (*Store, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Palette loader started.", "dir", dir)

	store := NewStore()
	files, err := fsutil.FindFilesByExtension(dir, ".json", ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to scan palette directory %s: %w", dir, err)
	}
	logger.Debug("Discovered palette files.", "count", len(files))

	parser := hclparse.NewParser()
	for _, file := range files {
		var found []*Palette
		switch strings.ToLower(filepath.Ext(file)) {
		case ".json":
			p, err := decodeJSONFile(file)
			if err != nil {
				logger.Info("Skipping palette file.", "file", file, "error", err)
				continue
			}
			found = append(found, p)
		case ".hcl":
			ps, err := decodeHCLFile(parser, file)
			if err != nil {
				logger.Info("Skipping palette file.", "file", file, "error", err)
				continue
			}
			found = ps
		}

		for _, p := range found {
			if err := store.Add(ctx, p); err != nil {
				logger.Info("Skipping palette.", "file", file, "palette", p.Name, "error", err)
			}
		}
	}

	logger.Debug("Palette loading complete.", "palettes", store.Len())
	return store, nil
}
