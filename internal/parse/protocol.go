// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/trial-harvester/internal/tree"
)

// Protocol parses a per-country protocol page into a nested mapping
// keyed by section title ("A. Protocol Information", ...), plus a
// "summary" section and the source "url". Field values are rendered as
// single-element sequences, matching how the register serves them;
// repeated labels within a section are kept as repeated entries.
func Protocol(doc *goquery.Document, url string) (*tree.Node, error) {
	out := tree.Mapping()
	out.Add("url", tree.Scalar(url))

	summary := tree.Mapping()
	doc.Find("table.summary tr").Each(func(_ int, row *goquery.Selection) {
		if label, value, ok := rowLabelValue(row); ok {
			summary.Add(label, tree.Sequence(tree.Scalar(value)))
		}
	})
	if len(summary.Pairs()) > 0 {
		out.Add("summary", summary)
	}

	var section *tree.Node
	sections := 0
	doc.Find("table.sections tr").Each(func(_ int, row *goquery.Selection) {
		if header := row.Find("td.section"); header.Length() > 0 {
			section = tree.Mapping()
			out.Add(normalizeSpace(header.First().Text()), section)
			sections++
			return
		}
		if section == nil {
			return
		}
		if label, value, ok := rowLabelValue(row); ok {
			section.Add(label, tree.Sequence(tree.Scalar(value)))
		}
	})

	if len(summary.Pairs()) == 0 && sections == 0 {
		return nil, fmt.Errorf("protocol page has no recognizable sections")
	}
	return out, nil
}

// rowLabelValue reads a label/value table row. Three-cell rows carry a
// leading field code which is dropped; two-cell rows are label/value.
func rowLabelValue(row *goquery.Selection) (label, value string, ok bool) {
	cells := row.Find("td")
	switch cells.Length() {
	case 2:
		return normalizeSpace(cells.Eq(0).Text()), normalizeSpace(cells.Eq(1).Text()), true
	case 3:
		return normalizeSpace(cells.Eq(1).Text()), normalizeSpace(cells.Eq(2).Text()), true
	}
	return "", "", false
}
