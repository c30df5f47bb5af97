package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/spherical/question-agent/internal/domain"
)

// ValidatePDFPath checks that path names a readable .pdf file.
func ValidatePDFPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return domain.ValidationError("file path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.ImageNotFoundError(path, err)
	}

	if info.IsDir() {
		return domain.ValidationError(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}

	if !IsPDF(path) {
		return domain.ValidationError(fmt.Sprintf("file is not a PDF: %s", path), nil)
	}

	return nil
}
