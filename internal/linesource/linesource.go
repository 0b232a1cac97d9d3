// Package linesource turns invoice PDFs into the text lines and tables the
// provider grammars consume. Two backends exist: pdftotext for born-digital
// PDFs, and Google Document AI for scanned ones. The orchestrator decides
// which strategy to ask for; this package only answers.
package linesource

import (
	"context"
	"errors"

	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// ErrNoTables is returned by backends that cannot produce structured
// tables for the given document.
var ErrNoTables = errors.New("linesource: no tables detected")

// ErrNoText is returned when a document yields no machine-readable text at
// all, the usual sign of a scanned image.
var ErrNoText = errors.New("linesource: no machine-readable text")

// ScannedTextThreshold is the character count under which a PDF's embedded
// text layer is considered absent and the document treated as scanned.
const ScannedTextThreshold = 50

// Source produces the raw material for extraction from a PDF on disk.
type Source interface {
	// RawText returns the document's full text in reading order.
	RawText(ctx context.Context, path string) (string, error)

	// TextLines returns the document's text as trimmed lines. With useOCR
	// set, the text comes from the OCR backend instead of the embedded text
	// layer.
	TextLines(ctx context.Context, path string, useOCR bool) ([]string, error)

	// Tables returns the structured tables detected in the document, or
	// ErrNoTables.
	Tables(ctx context.Context, path string) ([]entity.Table, error)
}
