package state

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/google/renameio/v2"
	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
)

const packagesKey = "packages"

// File is one state file on disk. Every call re-reads the file, so a File
// never serves stale data across the steps of a command.
type File struct {
	// Label is the file's base name, used in messages and status output.
	Label string
	Path  string
}

// NewFile returns a File for path, labelled with label.
func NewFile(label, path string) *File {
	return &File{Label: label, Path: path}
}

// document keeps top-level keys other than "packages" so they survive a
// rewrite.
type document struct {
	extra    map[string]json.RawMessage
	packages map[string]Record
}

func (f *File) load() (*document, error) {
	doc := &document{
		extra:    map[string]json.RawMessage{},
		packages: map[string]Record{},
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, lnrerrors.Wrapf(err, lnrerrors.ErrCorruptState, "reading %s", f.Label)
	}

	if err := validate(data); err != nil {
		return nil, lnrerrors.Wrapf(err, lnrerrors.ErrCorruptState, "%s is not a valid state file", f.Label)
	}

	if err := json.Unmarshal(data, &doc.extra); err != nil {
		return nil, lnrerrors.Wrapf(err, lnrerrors.ErrCorruptState, "parsing %s", f.Label)
	}
	if raw, ok := doc.extra[packagesKey]; ok {
		if err := json.Unmarshal(raw, &doc.packages); err != nil {
			return nil, lnrerrors.Wrapf(err, lnrerrors.ErrCorruptState, "parsing %s packages", f.Label)
		}
		delete(doc.extra, packagesKey)
	}
	if doc.packages == nil {
		doc.packages = map[string]Record{}
	}
	return doc, nil
}

func (f *File) save(doc *document) error {
	out := make(map[string]interface{}, len(doc.extra)+1)
	for k, v := range doc.extra {
		out[k] = v
	}
	out[packagesKey] = doc.packages

	// encoding/json sorts map keys.
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", f.Label, err)
	}
	data = append(data, '\n')

	if err := renameio.WriteFile(f.Path, data, 0644); err != nil {
		return lnrerrors.Wrapf(err, lnrerrors.ErrFilesystem, "writing %s", f.Label)
	}
	return nil
}

// Read returns the record for name, or nil when the file has none.
func (f *File) Read(name string) (*Record, error) {
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	rec, ok := doc.packages[name]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Write stores rec under name, replacing any previous record.
func (f *File) Write(name string, rec Record) error {
	doc, err := f.load()
	if err != nil {
		return err
	}
	doc.packages[name] = rec
	return f.save(doc)
}

// Delete removes name. Deleting an absent name is a no-op.
func (f *File) Delete(name string) error {
	doc, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := doc.packages[name]; !ok {
		return nil
	}
	delete(doc.packages, name)
	return f.save(doc)
}

// Records returns every record in the file.
func (f *File) Records() (map[string]Record, error) {
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	return doc.packages, nil
}

// Names returns the recorded package names, sorted.
func (f *File) Names() ([]string, error) {
	recs, err := f.Records()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(recs))
	for name := range recs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
