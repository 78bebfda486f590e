// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report extracts text and tables from the downloadable report
// packages some results documents reference: a ZIP archive holding a
// PDF.
package report

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// cellGap is the horizontal distance (in PDF units) between two text
// runs on the same row that starts a new table cell.
const cellGap = 10.0

// ExtractTextAndTables opens a ZIP archive from bytes, reads the first
// document inside, and returns all page text concatenated plus every
// row-grouped table extracted from the pages.
func ExtractTextAndTables(zipBytes []byte) (string, [][]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return "", nil, fmt.Errorf("opening report archive: %w", err)
	}
	if len(zr.File) == 0 {
		return "", nil, fmt.Errorf("report archive is empty")
	}

	f, err := zr.File[0].Open()
	if err != nil {
		return "", nil, fmt.Errorf("opening %s in archive: %w", zr.File[0].Name, err)
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return "", nil, fmt.Errorf("reading %s from archive: %w", zr.File[0].Name, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("opening report document: %w", err)
	}

	text, err := plainText(reader)
	if err != nil {
		return "", nil, err
	}

	var tables [][]string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			if cells := rowCells(row); len(cells) > 0 {
				tables = append(tables, cells)
			}
		}
	}

	return text, tables, nil
}

func plainText(reader *pdf.Reader) (string, error) {
	r, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting report text: %w", err)
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading report text: %w", err)
	}
	return string(text), nil
}

// rowCells groups a row's text runs into cells, splitting where the
// horizontal gap between runs exceeds cellGap.
func rowCells(row *pdf.Row) []string {
	var cells []string
	var cell bytes.Buffer
	lastEnd := -1.0

	for _, t := range row.Content {
		if lastEnd >= 0 && t.X-lastEnd > cellGap && cell.Len() > 0 {
			cells = append(cells, cell.String())
			cell.Reset()
		}
		cell.WriteString(t.S)
		lastEnd = t.X + t.W
	}
	if cell.Len() > 0 {
		cells = append(cells, cell.String())
	}
	return cells
}
