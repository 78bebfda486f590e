// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBase = "https://www.clinicaltrialsregister.eu/ctr-search/search?query="

const cardPage = `
<html><body>
<div id="tabs">
<table class="result">
  <tr>
    <td>EudraCT Number: 2010-000123-45</td>
    <td>Full Title: A study of widgets in adults</td>
  </tr>
  <tr>
    <td>Sponsor Name: Acme Pharma GmbH</td>
    <td>Start Date: 2010-05-01</td>
  </tr>
  <tr>
    <td>Medical condition: Essential hypertension</td>
    <td>Disease: Cardiology</td>
  </tr>
  <tr>
    <td>Population Age: Adults, Elderly</td>
    <td>Gender: Male, Female</td>
  </tr>
  <tr>
    <td>Trial protocol:
      <a href="/ctr-search/trial/2010-000123-45/DE" title="Ongoing">DE</a>
      <a href="/ctr-search/trial/2010-000123-45/FR">FR</a>
    </td>
  </tr>
  <tr>
    <td>Trial Status: Completed</td>
    <td>Trial results: <a href="/ctr-search/trial/2010-000123-45/results">View results</a></td>
  </tr>
</table>
<table class="result">
  <tr><td>EudraCT Number: 2011-000999-01</td></tr>
</table>
</div>
</body></html>`

func TestCards_FindsAllFragments(t *testing.T) {
	doc, err := Document([]byte(cardPage))
	require.NoError(t, err)

	assert.Len(t, Cards(doc), 2)
}

func TestCard_FullFragment(t *testing.T) {
	doc, err := Document([]byte(cardPage))
	require.NoError(t, err)

	card, err := Card(Cards(doc)[0], searchBase)
	require.NoError(t, err)

	assert.Equal(t, "2010-000123-45", card.TrialID)
	assert.Equal(t, "A study of widgets in adults", card.FullTitle)
	assert.Equal(t, "Acme Pharma GmbH", card.SponsorName)
	assert.Equal(t, "2010-05-01", card.StartDate)
	assert.Equal(t, "Essential hypertension", card.MedicalCondition)
	assert.Equal(t, "Cardiology", card.Disease)
	assert.Equal(t, "Adults, Elderly", card.PopulationAge)
	assert.Equal(t, "Male, Female", card.Gender)
	assert.Equal(t,
		"https://www.clinicaltrialsregister.eu/ctr-search/trial/2010-000123-45/results",
		card.ResultsLink)

	require.Len(t, card.Protocols, 2)
	assert.Equal(t, "DE", card.Protocols[0].Country)
	assert.Equal(t,
		"https://www.clinicaltrialsregister.eu/ctr-search/trial/2010-000123-45/DE",
		card.Protocols[0].URL)
	// The link's own title attribute wins over the card-level status.
	assert.Equal(t, "Ongoing", card.Protocols[0].Status)

	// A link with no title falls back to the card-level status.
	assert.Equal(t, "FR", card.Protocols[1].Country)
	assert.Equal(t, "Completed", card.Protocols[1].Status)
}

func TestCard_SparseFragment(t *testing.T) {
	doc, err := Document([]byte(cardPage))
	require.NoError(t, err)

	card, err := Card(Cards(doc)[1], searchBase)
	require.NoError(t, err)

	assert.Equal(t, "2011-000999-01", card.TrialID)
	assert.Empty(t, card.FullTitle)
	assert.Empty(t, card.Protocols)
	assert.Empty(t, card.ResultsLink)
}

func TestCard_MissingTrialID(t *testing.T) {
	doc, err := Document([]byte(`<div id="tabs"><table class="result">
		<tr><td>Full Title: orphan fragment</td></tr>
	</table></div>`))
	require.NoError(t, err)

	_, err = Card(Cards(doc)[0], searchBase)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EudraCT number")
}

func TestCard_WhitespaceNormalized(t *testing.T) {
	doc, err := Document([]byte(`<div id="tabs"><table class="result">
		<tr><td>EudraCT   Number:
			2012-000001-10  </td></tr>
	</table></div>`))
	require.NoError(t, err)

	card, err := Card(Cards(doc)[0], searchBase)
	require.NoError(t, err)
	assert.Equal(t, "2012-000001-10", card.TrialID)
}
