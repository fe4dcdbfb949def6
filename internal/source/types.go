package source

type (
	// FileID identifies a script inside a FileSet.
	FileID uint32
	// FileFlags records how the content was normalised on load.
	FileFlags uint8
)

const (
	// FileVirtual marks content that did not come from disk (tests, stdin, scenarios).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is a loaded event script.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}
