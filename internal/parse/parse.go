// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse turns register HTML into the nested map shapes the
// merge engine consumes: search-result cards, protocol documents,
// results documents, and the pagination summary.
package parse

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document parses an HTML body.
func Document(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

var spaceRe = regexp.MustCompile(`\s+`)

// normalizeSpace collapses runs of whitespace to single spaces and
// trims the ends.
func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// slug lowercases s and replaces non-alphanumeric runs with
// underscores ("Global end date" -> "global_end_date").
func slug(s string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

// absURL resolves href against base. Unresolvable hrefs are returned
// as-is; the fetcher will surface them as request errors.
func absURL(base, href string) string {
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}
