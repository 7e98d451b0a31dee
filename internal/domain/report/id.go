package report

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var idPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// NewID returns a random 128-bit identifier as 32 lowercase hex characters.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ValidID reports whether id has the shape produced by NewID.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// ValidFile reports whether name is one of the artifact names.
func ValidFile(name string) bool {
	return name == HTMLFile || name == PDFFile
}
