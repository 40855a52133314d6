package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
)

// FileSet owns every source file seen by one compilation session.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> latest id
	baseDir string
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// SetBaseDir sets the directory relative paths are shown against.
func (fs *FileSet) SetBaseDir(dir string) { fs.baseDir = dir }

func (fs *FileSet) BaseDir() string { return fs.baseDir }

// Add stores already-normalized bytes and returns a fresh FileID.
// Re-adding a path creates a new ID; lookups by path see the newest one.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s too large: %w", path, err))
	}
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(n)
	normalized := normalizePath(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.index[normalized] = id
	return id
}

// Load reads a file from disk, strips a BOM, normalizes CRLF and calls Add.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return fs.AddNormalized(path, content, 0), nil
}

// AddNormalized applies the same BOM/CRLF cleanup as Load to in-memory content.
func (fs *FileSet) AddNormalized(path string, content []byte, flags FileFlags) FileID {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags)
}

// AddVirtual adds a file that never existed on disk.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.AddNormalized(name, content, FileVirtual)
}

// Get returns the file for id. It panics on ids from another set.
func (fs *FileSet) Get(id FileID) *File {
	return &fs.files[id]
}

// Len reports how many files the set holds.
func (fs *FileSet) Len() int {
	return len(fs.files)
}

// GetByPath returns the newest file loaded under path.
func (fs *FileSet) GetByPath(path string) (*File, bool) {
	if id, ok := fs.index[normalizePath(path)]; ok {
		return &fs.files[id], true
	}
	return nil, false
}

// Resolve converts a span into line and column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := &fs.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// GetLine returns line lineNum (1-based) without its newline, or "" when out of range.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	// #nosec G115 -- lengths are checked in Add
	size, lines := uint32(len(f.Content)), uint32(len(f.LineIdx))

	var start uint32
	switch {
	case lineNum == 1:
		start = 0
	case lineNum-2 < lines:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}
	end := size
	if lineNum-1 < lines {
		end = f.LineIdx[lineNum-1]
	}
	if start > size {
		return ""
	}
	return string(f.Content[start:end])
}

// FormatPath renders the path for display.
// mode: "absolute", "relative", "basename", "auto".
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		abs, err := filepath.Abs(f.Path)
		if err != nil {
			return f.Path
		}
		rel, err := filepath.Rel(baseDir, abs)
		// вне baseDir показываем как есть
		if err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	case "basename":
		return filepath.Base(f.Path)
	case "auto":
		if len(f.Path) >= 40 && filepath.IsAbs(f.Path) {
			return filepath.Base(f.Path)
		}
	}
	return f.Path
}
