package search

import "os"

// pathResolver confines model paths to the working directory.
type pathResolver interface {
	Root() string
	Abs(path string) (string, error)
	RelOf(abs string) string
	IsReserved(abs string) bool
}

// fileSystem defines the filesystem operations the search tools need.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}
