package linesource

import (
	"sort"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
)

// token is one OCR word with its position on the page.
type token struct {
	text string
	x, y float64 // left edge and vertical midpoint
}

// pageTokens flattens a Document AI page into positioned tokens.
func pageTokens(page *documentaipb.Document_Page, fullText string) []token {
	var toks []token
	for _, t := range page.GetTokens() {
		layout := t.GetLayout()
		text := strings.TrimRight(textFromLayout(layout, fullText), "\n")
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		x, y, ok := layoutPosition(layout)
		if !ok {
			continue
		}
		toks = append(toks, token{text: text, x: x, y: y})
	}
	return toks
}

// layoutPosition returns the left edge and vertical midpoint of a layout's
// bounding polygon. Pixel vertices are preferred; normalized vertices are
// scaled so the row tolerance applies uniformly.
func layoutPosition(layout *documentaipb.Document_Page_Layout) (x, y float64, ok bool) {
	poly := layout.GetBoundingPoly()
	if poly == nil {
		return 0, 0, false
	}
	if vs := poly.GetVertices(); len(vs) > 0 {
		minX := float64(vs[0].GetX())
		var sumY float64
		for _, v := range vs {
			if fx := float64(v.GetX()); fx < minX {
				minX = fx
			}
			sumY += float64(v.GetY())
		}
		return minX, sumY / float64(len(vs)), true
	}
	if vs := poly.GetNormalizedVertices(); len(vs) > 0 {
		const scale = 1000
		minX := float64(vs[0].GetX()) * scale
		var sumY float64
		for _, v := range vs {
			if fx := float64(v.GetX()) * scale; fx < minX {
				minX = fx
			}
			sumY += float64(v.GetY()) * scale
		}
		return minX, sumY / float64(len(vs)), true
	}
	return 0, 0, false
}

// buildRows reconstructs visual text rows from positioned tokens: tokens
// whose vertical midpoints sit within tolerance of a row's running midpoint
// belong to that row; each row is then ordered left to right.
func buildRows(toks []token, tolerance float64) []string {
	if len(toks) == 0 {
		return nil
	}
	sorted := make([]token, len(toks))
	copy(sorted, toks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].y < sorted[j].y })

	var rows [][]token
	var rowY float64
	for _, t := range sorted {
		if len(rows) == 0 || t.y-rowY > tolerance {
			rows = append(rows, []token{t})
			rowY = t.y
			continue
		}
		row := append(rows[len(rows)-1], t)
		rows[len(rows)-1] = row
		// Running midpoint keeps slanted scans from drifting out of the row.
		rowY = (rowY*float64(len(row)-1) + t.y) / float64(len(row))
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].x < row[j].x })
		words := make([]string, len(row))
		for i, t := range row {
			words[i] = t.text
		}
		if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
