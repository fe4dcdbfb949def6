package source

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"

	"fortio.org/safecast"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

func trimBOM(content []byte) ([]byte, bool) {
	if bytes.HasPrefix(content, bom) {
		return content[len(bom):], true
	}
	return content, false
}

// foldCRLF rewrites "\r\n" into "\n"; lone '\r' bytes stay.
func foldCRLF(content []byte) ([]byte, bool) {
	if bytes.IndexByte(content, '\r') < 0 {
		return content, false
	}
	out := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return out, len(out) != len(content)
}

func indexLines(content []byte) []uint32 {
	idx := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for i, b := range content {
		if b != '\n' {
			continue
		}
		off, err := safecast.Conv[uint32](i)
		if err != nil {
			panic(fmt.Errorf("line offset overflow: %w", err))
		}
		idx = append(idx, off)
	}
	return idx
}

func lineColAt(lineIdx []uint32, off uint32) LineCol {
	// number of newlines strictly before off
	line := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= off })
	var start uint32
	if line > 0 {
		start = lineIdx[line-1] + 1
	}
	n, err := safecast.Conv[uint32](line + 1)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return LineCol{Line: n, Col: off - start + 1}
}

func cleanPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
