// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrPaginationNotFound reports that the results-summary region or its
// expected text is missing from a search page. Distinct from a fetch
// error; without it no further pagination is possible.
var ErrPaginationNotFound = errors.New("pagination summary not found")

var paginationRe = regexp.MustCompile(`(\d+) result\(s\) found.*page \d+ of (\d+)`)

// ResolvePagination reads the first search-result page and returns the
// total page count and total result count. The summary region has its
// whitespace collapsed and thousands separators stripped before
// matching "<N> result(s) found ... page <P> of <Total>".
func ResolvePagination(doc *goquery.Document) (pages, results int, err error) {
	region := doc.Find("div#tabs-1 div.outcome")
	if region.Length() == 0 {
		return 0, 0, ErrPaginationNotFound
	}

	text := normalizeSpace(strings.ReplaceAll(region.First().Text(), ",", ""))
	m := paginationRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, ErrPaginationNotFound
	}

	results, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, ErrPaginationNotFound
	}
	pages, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, ErrPaginationNotFound
	}
	return pages, results, nil
}
