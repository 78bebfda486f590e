// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/trial-harvester/pkg/types"
)

// Cards returns the trial-card fragments of a search-result page, in
// page order.
func Cards(doc *goquery.Document) []*goquery.Selection {
	var cards []*goquery.Selection
	doc.Find("div#tabs table.result").Each(func(_ int, s *goquery.Selection) {
		cards = append(cards, s)
	})
	return cards
}

// Card parses a single search-result fragment into a TrialCard.
// Relative links are resolved against baseURL. A fragment without an
// EudraCT number is rejected: the trial ID is the record key everywhere
// downstream.
func Card(card *goquery.Selection, baseURL string) (types.TrialCard, error) {
	var out types.TrialCard
	var status string

	card.Find("td").Each(func(_ int, cell *goquery.Selection) {
		text := normalizeSpace(cell.Text())
		label, value, ok := splitLabel(text)
		if !ok {
			return
		}

		switch label {
		case "EudraCT Number":
			out.TrialID = value
		case "Full Title":
			out.FullTitle = value
		case "Sponsor Name":
			out.SponsorName = value
		case "Medical condition":
			out.MedicalCondition = value
		case "Disease":
			out.Disease = value
		case "Population Age":
			out.PopulationAge = value
		case "Gender":
			out.Gender = value
		case "Start Date":
			out.StartDate = value
		case "Trial Status":
			status = value
		case "Trial protocol":
			cell.Find("a").Each(func(_ int, a *goquery.Selection) {
				href, _ := a.Attr("href")
				ref := types.ProtocolRef{
					Country: normalizeSpace(a.Text()),
					URL:     absURL(baseURL, href),
				}
				if title, ok := a.Attr("title"); ok {
					ref.Status = normalizeSpace(title)
				}
				out.Protocols = append(out.Protocols, ref)
			})
		case "Trial results":
			if href, ok := cell.Find("a").First().Attr("href"); ok {
				out.ResultsLink = absURL(baseURL, href)
			}
		}
	})

	// A card-level status stands in for links that carry none.
	for i := range out.Protocols {
		if out.Protocols[i].Status == "" {
			out.Protocols[i].Status = status
		}
	}

	if out.TrialID == "" {
		return types.TrialCard{}, fmt.Errorf("card has no EudraCT number")
	}
	return out, nil
}

// splitLabel splits "Label: value" cell text at the first colon.
func splitLabel(text string) (label, value string, ok bool) {
	i := strings.Index(text, ":")
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:]), true
}
