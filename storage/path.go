package storage

import "strings"

// Paths resolves folder and file names against a base path. The base path
// never starts with "/".
//
// An empty folder means "no folder". Folder names are joined as given: a
// folder without a trailing "/" gets a separator before the filename, one with
// a trailing "/" does not, and no folder at all means the filename is appended
// to the base path directly ("root" + "a.csv" = "roota.csv"). Callers that
// want a separator after the base path pass a folder.
type Paths struct {
	basePath string
}

// NewPaths returns a resolver rooted at basePath.
func NewPaths(basePath string) Paths {
	p := Paths{}
	p.SetBasePath(basePath)
	return p
}

// BasePath returns the current base path.
func (p *Paths) BasePath() string { return p.basePath }

// SetBasePath replaces the base path, dropping any leading "/".
func (p *Paths) SetBasePath(path string) {
	p.basePath = strings.TrimLeft(path, "/")
}

// FolderPath returns the prefix for folder.
func (p *Paths) FolderPath(folder string) string {
	if folder == "" {
		return p.basePath
	}
	if p.basePath == "" {
		return folder
	}
	return p.basePath + "/" + folder
}

// FullPath returns the object key for filename inside folder.
func (p *Paths) FullPath(filename, folder string) string {
	if folder == "" || strings.HasSuffix(folder, "/") {
		return p.FolderPath(folder) + filename
	}
	return p.FolderPath(folder) + "/" + filename
}
