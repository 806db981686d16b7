package gows

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// pathPart is one component of the walked target path, with the
// accumulated prefix up to and including that component.
type pathPart struct {
	PartName string `json:"part_name"`
	FullPath string `json:"full_path"`
}

// directoryFile describes one immediate child of the listed directory.
type directoryFile struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	FileType     string `json:"file_type"`
	LastModified string `json:"last_modified"`
	Size         string `json:"size"`
}

// directoryListing is the /api/directory response shape (spec.md §6).
type directoryListing struct {
	Paths []pathPart      `json:"paths"`
	Files []directoryFile `json:"files"`
}

// listDirectory builds the directoryListing for path, relative to the
// process's working directory unless path is absolute, per
// original_source/src/api/utils.rs's
// list_directory: "paths" walks the path components of the target,
// "files" lists its immediate children with human-formatted sizes and
// dd/mm/YYYY HH:MM:SS UTC timestamps.
func listDirectory(path string) (*directoryListing, error) {
	rootPath, err := filepath.Abs(".")
	if err != nil {
		return nil, err
	}

	// Like PathBuf::join, an absolute path replaces the "./" base.
	target := path
	if !filepath.IsAbs(path) {
		target = filepath.Join(".", path)
	}

	listing := &directoryListing{Paths: walkPathParts(path)}

	canonicalTarget, err := filepath.EvalSymlinks(target)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(canonicalTarget)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}

		fullPath := filepath.Join(canonicalTarget, entry.Name())
		rel, err := filepath.Rel(rootPath, fullPath)
		if err != nil {
			rel = fullPath
		}

		fileType := "File"
		if entry.IsDir() {
			fileType = "Directory"
		}

		listing.Files = append(listing.Files, directoryFile{
			Path:         rel,
			Name:         entry.Name(),
			FileType:     fileType,
			LastModified: info.ModTime().UTC().Format("02/01/2006 15:04:05"),
			Size:         humanize.Bytes(uint64(info.Size())),
		})
	}

	return listing, nil
}

// walkPathParts reconstructs the path-component breadcrumb spec.md §6
// requires: each component of "./" joined with path, with the prefix
// accumulated up to and including it. Mirrors
// original_source/src/api/utils.rs's list_directory, which joins path onto
// `PathBuf::from("./")` and walks `.components()`: joining onto "./"
// always contributes a leading CurDir component (even for an empty path,
// where it is the only component), and Rust's Components iterator
// normalizes away any other bare "." segment, which is why a literal "."
// input path also yields just the single leading component.
func walkPathParts(path string) []pathPart {
	var parts []pathPart
	var prefix strings.Builder

	emit := func(seg string) {
		prefix.WriteString(seg)
		prefix.WriteByte('/')
		parts = append(parts, pathPart{PartName: seg, FullPath: prefix.String()})
	}

	emit(".")
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == "" || seg == "." {
			continue
		}
		emit(seg)
	}
	return parts
}
