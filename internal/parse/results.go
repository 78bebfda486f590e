// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/trial-harvester/internal/tree"
)

// Results parses a per-trial results page into a mapping of version key
// to version data, preserving page order. The register tags exactly one
// version key with "current" (e.g. "v1(current)"); each version carries
// a "summary" sub-map (slugged keys, e.g. "global_end_date"), a
// "results_information" sub-map (verbatim labels), and arbitrarily
// nested sections with repeated-keyword fields.
func Results(doc *goquery.Document) (*tree.Node, error) {
	out := tree.Mapping()

	doc.Find("div#resultContent div.version").Each(func(i int, ver *goquery.Selection) {
		key, ok := ver.Attr("data-version")
		if !ok {
			key = normalizeSpace(ver.ChildrenFiltered("h3").First().Text())
		}
		if key == "" {
			key = fmt.Sprintf("version %d", i+1)
		}
		out.Add(key, versionNode(ver))
	})

	if len(out.Pairs()) == 0 {
		return nil, fmt.Errorf("results page has no version entries")
	}
	return out, nil
}

func versionNode(ver *goquery.Selection) *tree.Node {
	v := tree.Mapping()

	summary := tree.Mapping()
	ver.ChildrenFiltered("table.summary").Find("tr").Each(func(_ int, row *goquery.Selection) {
		if label, value, ok := rowLabelValue(row); ok {
			summary.Add(slug(label), tree.Sequence(tree.Scalar(value)))
		}
	})
	if len(summary.Pairs()) > 0 {
		v.Add("summary", summary)
	}

	info := tree.Mapping()
	ver.ChildrenFiltered("table.results-information").Find("tr").Each(func(_ int, row *goquery.Selection) {
		if label, value, ok := rowLabelValue(row); ok {
			info.Add(label, tree.Sequence(tree.Scalar(value)))
		}
	})
	if len(info.Pairs()) > 0 {
		v.Add("results_information", info)
	}

	ver.ChildrenFiltered("div.section").Each(func(_ int, sec *goquery.Selection) {
		v.Add(sectionTitle(sec), sectionNode(sec))
	})
	return v
}

// sectionNode parses a results section: direct tables contribute
// label/value fields, nested div.section children recurse.
func sectionNode(sec *goquery.Selection) *tree.Node {
	m := tree.Mapping()
	sec.ChildrenFiltered("table").Find("tr").Each(func(_ int, row *goquery.Selection) {
		if label, value, ok := rowLabelValue(row); ok {
			m.Add(label, tree.Sequence(tree.Scalar(value)))
		}
	})
	sec.ChildrenFiltered("div.section").Each(func(_ int, sub *goquery.Selection) {
		m.Add(sectionTitle(sub), sectionNode(sub))
	})
	return m
}

func sectionTitle(sec *goquery.Selection) string {
	title := normalizeSpace(sec.ChildrenFiltered("h4").First().Text())
	if title == "" {
		title = "section"
	}
	return title
}

// ReportLink returns the downloadable report package URL referenced by
// a results page, or "" when none is offered.
func ReportLink(doc *goquery.Document, baseURL string) string {
	href, ok := doc.Find("div#resultContent a.reportDownload").First().Attr("href")
	if !ok {
		return ""
	}
	return absURL(baseURL, href)
}
