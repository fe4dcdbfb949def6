package diagfmt

import "borrowck/internal/source"

func displayPath(fs *source.FileSet, id source.FileID, mode source.PathMode) string {
	f := fs.Get(id)
	if f == nil {
		return "<unknown>"
	}
	if mode == source.PathRelative {
		return f.DisplayPath(mode, fs.BaseDir())
	}
	return f.DisplayPath(mode, "")
}
