// Package upload ingests incoming file streams into the configured uploads
// directory under collision-resistant stored names.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// invalidChars removes the characters the stored filename must not carry.
// Deliberately minimal: path-traversal sequences in the original name are not
// rewritten here (see DESIGN.md); the random token prefix keeps stored names
// unique inside the dedicated uploads directory.
var invalidChars = strings.NewReplacer(":", "", "\\", "", " ", "")

// Saver writes uploaded files into a destination directory provided at
// construction time.
type Saver struct {
	dir string
}

func NewSaver(dir string) *Saver {
	return &Saver{dir: dir}
}

// Save writes the stream to disk and returns the assigned stored filename,
// <token>-<sanitizedOriginalName>. The token is a fresh random UUID per call,
// so two uploads with identical original names never collide. On write
// failure the error is returned as-is; a partially written file is not
// removed.
func (s *Saver) Save(originalFilename string, stream io.Reader) (string, error) {
	storedName := uuid.NewString() + "-" + Sanitize(originalFilename)

	dst, err := os.Create(filepath.Join(s.dir, storedName))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, stream); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return storedName, nil
}

// Sanitize strips colon, backslash and space characters from a filename.
func Sanitize(filename string) string {
	return invalidChars.Replace(filename)
}
