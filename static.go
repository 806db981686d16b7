package gows

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed static/*
var embeddedStatic embed.FS

// StaticFiles is the read-only name→bytes map the spec treats as an
// external, build-time-produced collaborator (spec.md §1). Go supplies
// that contract with embed.FS instead of the original's include_bytes!
// front-end pipeline; the front-end SPA itself is explicitly out of scope.
type StaticFiles struct {
	files map[string][]byte
}

// NewStaticFiles loads every file under static/ into memory once at
// startup.
func NewStaticFiles() (*StaticFiles, error) {
	files := make(map[string][]byte)
	err := fs.WalkDir(embeddedStatic, "static", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := embeddedStatic.ReadFile(path)
		if err != nil {
			return err
		}
		files[d.Name()] = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &StaticFiles{files: files}, nil
}

// Get returns the bytes for name, or an error if no such asset was
// embedded.
func (s *StaticFiles) Get(name string) ([]byte, error) {
	data, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("file %s not found", name)
	}
	return data, nil
}
