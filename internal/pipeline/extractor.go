// Package pipeline drives a document from PDF to audited, persisted
// invoice: extraction cascade, audit checks, storage.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/common"
	"github.com/bgv-audit/invoice-audit/internal/entity"
	"github.com/bgv-audit/invoice-audit/internal/linesource"
	"github.com/bgv-audit/invoice-audit/internal/provider"
)

// attempt is one extraction strategy's output for a document.
type attempt struct {
	stage constants.ExtractionStage
	items []entity.ExtractedLineItem
}

func (a attempt) sum() float64 {
	var s float64
	for _, li := range a.items {
		s += li.Amount
	}
	return s
}

// Extractor runs the strategy cascade for one document: structured tables,
// then the plain text layer, then an OCR re-parse. Each strategy's output
// is kept as a candidate and exactly one wins.
type Extractor struct {
	registry *provider.Registry
	source   linesource.Source
	logger   *slog.Logger
}

func NewExtractor(registry *provider.Registry, source linesource.Source, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{registry: registry, source: source, logger: logger}
}

// Extract identifies the vendor from the document text and extracts with
// its grammar.
func (e *Extractor) Extract(ctx context.Context, path string) (*entity.ExtractedInvoice, error) {
	text, err := e.source.RawText(ctx, path)
	if err != nil && text == "" {
		return nil, common.NewExtractionError(path, "", string(constants.StageText), "could not read document text", err)
	}
	g, ok := e.registry.Identify(text)
	if !ok {
		return nil, &common.IdentificationError{Document: path}
	}
	return e.extractWith(ctx, path, g, text)
}

// ExtractWithProvider skips auto-detection and extracts with the named
// vendor's grammar.
func (e *Extractor) ExtractWithProvider(ctx context.Context, path, providerName string) (*entity.ExtractedInvoice, error) {
	g, err := e.registry.Get(providerName)
	if err != nil {
		return nil, err
	}
	text, err := e.source.RawText(ctx, path)
	if err != nil && text == "" {
		return nil, common.NewExtractionError(path, providerName, string(constants.StageText), "could not read document text", err)
	}
	return e.extractWith(ctx, path, g, text)
}

func (e *Extractor) extractWith(ctx context.Context, path string, g provider.Grammar, text string) (*entity.ExtractedInvoice, error) {
	name := string(g.Name())
	header := g.ExtractHeader(text)
	log := e.logger.With("document", path, "provider", name)

	var attempts []attempt

	// Strategy 1: structured tables, for grammars that can read them.
	if tp, ok := g.(provider.TableParser); ok {
		tables, err := e.source.Tables(ctx, path)
		switch {
		case err == nil:
			var items []entity.ExtractedLineItem
			for _, tbl := range tables {
				items = append(items, tp.ParseTable(tbl)...)
			}
			attempts = append(attempts, attempt{stage: constants.StageTable, items: items})
			log.Debug("table strategy complete", "items", len(items))
		case errors.Is(err, linesource.ErrNoTables):
			log.Debug("no tables detected")
		default:
			log.Warn("table strategy failed", "error", err)
		}
	}

	// Strategy 2: the embedded text layer.
	lines, err := e.source.TextLines(ctx, path, false)
	if err != nil {
		log.Warn("text strategy failed", "error", err)
	} else {
		items := g.ParseLines(lines)
		attempts = append(attempts, attempt{stage: constants.StageText, items: items})
		log.Debug("text strategy complete", "items", len(items))
	}

	best, found := selectBest(attempts, header)

	// Strategy 3: OCR re-parse, only when the cheaper strategies came up
	// empty or their sum disagrees with the declared total.
	if !found || needsOCR(best, header) {
		ocrLines, err := e.source.TextLines(ctx, path, true)
		if err != nil {
			log.Warn("ocr strategy unavailable", "error", err)
		} else {
			items := g.ParseLines(ocrLines)
			attempts = append(attempts, attempt{stage: constants.StageOCR, items: items})
			log.Info("ocr strategy complete", "items", len(items))
			best, found = selectBest(attempts, header)
		}
	}

	if !found {
		stage := constants.StageText
		if len(attempts) > 0 {
			stage = attempts[len(attempts)-1].stage
		}
		return nil, common.NewExtractionError(path, name, string(stage),
			"no strategy produced line items", nil)
	}

	total := header.GrandTotal
	if !header.HasTotal || total == 0 {
		// A missing declared total silently disables the mismatch check
		// downstream, so it is worth a warning here.
		total = best.sum()
		log.Warn("no grand total pattern matched, falling back to line item sum",
			"calculated_total", total)
	}

	log.Info("extraction complete",
		"stage", string(best.stage),
		"items", len(best.items),
		"invoice_number", header.InvoiceNumber,
		"grand_total", total)

	return &entity.ExtractedInvoice{
		InvoiceNumber: header.InvoiceNumber,
		ProviderName:  name,
		LineItems:     best.items,
		GrandTotal:    total,
	}, nil
}

// selectBest picks the winning attempt. With a declared total, the attempt
// whose sum lands closest wins; without one, the attempt with the most
// items. Empty attempts never win over non-empty ones.
func selectBest(attempts []attempt, header provider.Header) (attempt, bool) {
	best := attempt{}
	found := false
	for _, a := range attempts {
		if len(a.items) == 0 {
			continue
		}
		if !found {
			best = a
			found = true
			continue
		}
		if header.HasTotal && header.GrandTotal > 0 {
			if math.Abs(header.GrandTotal-a.sum()) < math.Abs(header.GrandTotal-best.sum()) {
				best = a
			}
		} else if len(a.items) > len(best.items) {
			best = a
		}
	}
	return best, found
}

// needsOCR reports whether the winning cheap attempt still disagrees with
// the declared total by more than rounding.
func needsOCR(best attempt, header provider.Header) bool {
	if len(best.items) == 0 {
		return true
	}
	if !header.HasTotal || header.GrandTotal == 0 {
		return false
	}
	return math.Abs(header.GrandTotal-best.sum()) > constants.RoundingTolerance
}
