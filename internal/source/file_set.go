package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet owns every script loaded during one run and resolves spans into positions.
type FileSet struct {
	files   []File
	index   map[string]FileID
	baseDir string
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return NewFileSetWithBase("")
}

// NewFileSetWithBase creates a FileSet whose relative display paths are computed against baseDir.
func NewFileSetWithBase(baseDir string) *FileSet {
	return &FileSet{
		index:   make(map[string]FileID),
		baseDir: baseDir,
	}
}

// BaseDir returns the directory used for relative display paths (cwd when unset).
func (fs *FileSet) BaseDir() string {
	if fs.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fs.baseDir
}

// Add registers already-normalised content. Re-adding a path yields a new FileID.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	id := FileID(n)
	clean := cleanPath(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    clean,
		Content: content,
		LineIdx: indexLines(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.index[clean] = id
	return id
}

// Load reads path from disk, strips a BOM and folds CRLF before adding it.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	content, hadBOM := trimBOM(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	content, hadCRLF := foldCRLF(content)
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds in-memory content.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	content, _ = foldCRLF(content)
	return fs.Add(name, content, FileVirtual)
}

// Get returns the file for id, or nil when id is unknown.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// Lookup returns the latest FileID registered for path.
func (fs *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fs.index[cleanPath(path)]
	return id, ok
}

// Len reports how many files were added.
func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Resolve converts span into 1-based start/end positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return lineColAt(f.LineIdx, span.Start), lineColAt(f.LineIdx, span.End)
}

// Line returns the text of 1-based line n without its terminator.
func (f *File) Line(n uint32) string {
	if n == 0 || int(n) > len(f.LineIdx)+1 {
		return ""
	}
	var start uint32
	if n > 1 {
		start = f.LineIdx[n-2] + 1
	}
	end, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	if int(n) <= len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// PathMode controls how file paths are displayed.
type PathMode uint8

const (
	PathAuto PathMode = iota
	PathAbsolute
	PathRelative
	PathBasename
)

// DisplayPath renders the file path according to mode; baseDir is used for PathRelative.
func (f *File) DisplayPath(mode PathMode, baseDir string) string {
	switch mode {
	case PathAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathRelative:
		if baseDir == "" {
			return f.Path
		}
		abs, err := filepath.Abs(f.Path)
		if err != nil {
			return f.Path
		}
		if rel, err := filepath.Rel(baseDir, abs); err == nil {
			return filepath.ToSlash(rel)
		}
	case PathBasename:
		return filepath.Base(f.Path)
	case PathAuto:
		// длинные абсолютные пути укорачиваем до имени файла
		if len(f.Path) >= 40 && filepath.IsAbs(f.Path) {
			return filepath.Base(f.Path)
		}
	}
	return f.Path
}
