// Package fileutil provides shared file access helpers.
package fileutil

import "os"

// OwnerReadWrite is the file permission mode for output derived from
// untrusted documents (owner read/write only).
const OwnerReadWrite os.FileMode = 0o600

// ReadableByAll is the file permission mode for rendered output intended
// to be read by other tools.
const ReadableByAll os.FileMode = 0o644

// ReadText reads the file at path and returns its contents as a string.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
