package constants

import "strings"

// ExtractionStage identifies which strategy produced an extraction attempt.
type ExtractionStage string

const (
	StageTable ExtractionStage = "table"    // structured table parse
	StageText  ExtractionStage = "text"     // plain-text line parse
	StageOCR   ExtractionStage = "ocr-text" // OCR re-parse
)

// AllowedExtensions holds the file extensions accepted by invoice ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsIngestible reports whether a filename has an accepted extension.
func IsIngestible(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	_, ok := AllowedExtensions[NormalizeExt(filename[i:])]
	return ok
}
