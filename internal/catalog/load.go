package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hyperengineering/nurture/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embeddedFS embed.FS

// document is the on-disk shape of one catalog file.
type document struct {
	Name        string               `yaml:"name"`
	Kind        Kind                 `yaml:"kind"`
	Description string               `yaml:"description"`
	Policy      *Policy              `yaml:"policy,omitempty"`
	Milestones  []types.Milestone    `yaml:"milestones,omitempty"`
	Activities  []types.Activity     `yaml:"activities,omitempty"`
	Events      []types.MedicalEvent `yaml:"events,omitempty"`
}

// LoadEmbedded loads the built-in catalogs compiled into the binary.
func LoadEmbedded() (*Set, error) {
	return LoadFS(embeddedFS, "data/*.yaml")
}

// Load loads the built-in catalogs and then applies every document found
// under overrideDir. A document whose name matches a built-in replaces it.
// An empty overrideDir loads only the built-ins.
func Load(overrideDir string) (*Set, error) {
	set, err := LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("load embedded catalogs: %w", err)
	}
	if overrideDir == "" {
		return set, nil
	}

	info, err := os.Stat(overrideDir)
	if err != nil {
		return nil, fmt.Errorf("stat catalog dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog dir %q is not a directory", overrideDir)
	}

	docs, err := readDocuments(os.DirFS(overrideDir), "**/*.{yaml,yml}")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if _, dup := seen[doc.Name]; dup {
			return nil, fmt.Errorf("%w: %q declared by more than one override", ErrDuplicateCatalog, doc.Name)
		}
		seen[doc.Name] = struct{}{}
		if err := set.add(doc, true); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// LoadFS loads every catalog document in fsys matching pattern.
// Patterns use doublestar syntax, so "**/*.yaml" descends into subdirectories.
func LoadFS(fsys fs.FS, pattern string) (*Set, error) {
	docs, err := readDocuments(fsys, pattern)
	if err != nil {
		return nil, err
	}
	set := newSet()
	for _, doc := range docs {
		if err := set.add(doc, false); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func readDocuments(fsys fs.FS, pattern string) ([]document, error) {
	paths, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob catalogs: %w", err)
	}

	docs := make([]document, 0, len(paths))
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		doc, err := decodeDocument(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// decodeDocument strictly decodes one YAML document; unknown keys are errors
// so that typos in hand-edited catalogs do not silently drop data.
func decodeDocument(data []byte) (document, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		return doc, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Name == "" {
		return doc, fmt.Errorf("%w: missing name", ErrInvalidDocument)
	}
	return doc, nil
}

// add validates doc and stores it in the set. With replace set, a document
// may supersede an existing catalog of the same name and kind.
func (s *Set) add(doc document, replace bool) error {
	if existing, ok := s.kindOf(doc.Name); ok {
		if !replace {
			return fmt.Errorf("%w: %q", ErrDuplicateCatalog, doc.Name)
		}
		if existing != doc.Kind {
			return fmt.Errorf("%w: %q is a %s catalog, override declares %s", ErrKindMismatch, doc.Name, existing, doc.Kind)
		}
	}
	if err := validateDocument(doc); err != nil {
		return err
	}

	switch doc.Kind {
	case KindMilestones:
		c := &MilestoneCatalog{
			Name:        doc.Name,
			Description: doc.Description,
			Milestones:  doc.Milestones,
			index:       make(map[string]int, len(doc.Milestones)),
		}
		if doc.Policy != nil {
			c.Policy = *doc.Policy
		}
		for i, m := range doc.Milestones {
			c.index[m.ID] = i
		}
		s.milestones[doc.Name] = c
	case KindActivities:
		s.activities[doc.Name] = &ActivityCatalog{
			Name:        doc.Name,
			Description: doc.Description,
			Activities:  doc.Activities,
		}
	case KindMedical:
		sched := &MedicalSchedule{
			Name:        doc.Name,
			Description: doc.Description,
			Events:      doc.Events,
			index:       make(map[string]int, len(doc.Events)),
		}
		for i, e := range doc.Events {
			sched.index[e.ID] = i
		}
		s.medical[doc.Name] = sched
	}
	return nil
}

// kindOf reports the kind of the catalog stored under name.
func (s *Set) kindOf(name string) (Kind, bool) {
	if _, ok := s.milestones[name]; ok {
		return KindMilestones, true
	}
	if _, ok := s.activities[name]; ok {
		return KindActivities, true
	}
	if _, ok := s.medical[name]; ok {
		return KindMedical, true
	}
	return "", false
}
