// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trial-harvester/internal/tree"
)

const protocolPage = `
<html><body>
<table class="summary">
  <tr><td>EudraCT Number</td><td>2010-000123-45</td></tr>
  <tr><td>Trial Status</td><td>Completed</td></tr>
  <tr><td>Date on which this record was first entered in the EudraCT database</td><td>2010-04-12</td></tr>
</table>
<table class="sections">
  <tr><td class="section" colspan="3">A. Protocol Information</td></tr>
  <tr><td>A.3</td><td>Full title of the trial</td><td>A long official title of the widget study</td></tr>
  <tr><td>A.4.1</td><td>Sponsor's protocol code number</td><td>WDG-2010-01</td></tr>
  <tr><td class="section" colspan="3">B. Sponsor Information</td></tr>
  <tr><td>B.1.1</td><td>Name of Sponsor</td><td>Acme Pharma GmbH</td></tr>
  <tr><td>Country</td><td>Germany</td></tr>
  <tr><td>B.1.3.4</td><td>Status of the sponsor</td><td>Commercial</td></tr>
  <tr><td class="section" colspan="3">E. General Information on the Trial</td></tr>
  <tr><td>E.7.1</td><td>Human pharmacology (Phase I)</td><td>No</td></tr>
  <tr><td>E.7.2</td><td>Therapeutic exploratory (Phase II)</td><td>Yes</td></tr>
</table>
</body></html>`

func TestProtocol_Sections(t *testing.T) {
	doc, err := Document([]byte(protocolPage))
	require.NoError(t, err)

	url := "https://www.clinicaltrialsregister.eu/ctr-search/trial/2010-000123-45/DE"
	node, err := Protocol(doc, url)
	require.NoError(t, err)

	v, ok := node.Get("url")
	require.True(t, ok)
	assert.Equal(t, url, v.Text())

	status, ok := tree.SafeGet(node, "summary", "Trial Status")
	require.True(t, ok)
	assert.Equal(t, "Completed", status.Text())

	title, ok := tree.SafeGet(node, "A. Protocol Information", "Full title of the trial")
	require.True(t, ok)
	assert.Equal(t, "A long official title of the widget study", title.Text())

	country, ok := tree.SafeGet(node, "B. Sponsor Information", "Country")
	require.True(t, ok)
	assert.Equal(t, "Germany", country.Text())

	sponsorStatus, ok := tree.SafeGet(node, "B. Sponsor Information", "Status of the sponsor")
	require.True(t, ok)
	assert.Equal(t, "Commercial", sponsorStatus.Text())
}

func TestProtocol_SectionOrderPreserved(t *testing.T) {
	doc, err := Document([]byte(protocolPage))
	require.NoError(t, err)

	node, err := Protocol(doc, "u")
	require.NoError(t, err)

	var keys []string
	for _, p := range node.Pairs() {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{
		"url",
		"summary",
		"A. Protocol Information",
		"B. Sponsor Information",
		"E. General Information on the Trial",
	}, keys)
}

func TestProtocol_PhaseFieldsDiscoverable(t *testing.T) {
	doc, err := Document([]byte(protocolPage))
	require.NoError(t, err)

	node, err := Protocol(doc, "u")
	require.NoError(t, err)

	phases := tree.CollectByPattern(node, "Phase")
	require.Len(t, phases, 2)
	assert.Equal(t, "Human pharmacology (Phase I)", phases[0].Key)
	assert.Equal(t, "No", phases[0].Value.Text())
	assert.Equal(t, "Therapeutic exploratory (Phase II)", phases[1].Key)
	assert.Equal(t, "Yes", phases[1].Value.Text())
}

func TestProtocol_RepeatedLabelsKept(t *testing.T) {
	doc, err := Document([]byte(`
<table class="sections">
  <tr><td class="section">D. IMP Identification</td></tr>
  <tr><td>D.2.1</td><td>Product name</td><td>Widgetol</td></tr>
  <tr><td>D.2.1</td><td>Product name</td><td>Widgetol Forte</td></tr>
</table>`))
	require.NoError(t, err)

	node, err := Protocol(doc, "u")
	require.NoError(t, err)

	sec, ok := node.Get("D. IMP Identification")
	require.True(t, ok)
	require.Len(t, sec.Pairs(), 2)
	assert.Equal(t, "Widgetol", sec.Pairs()[0].Value.Text())
	assert.Equal(t, "Widgetol Forte", sec.Pairs()[1].Value.Text())
}

func TestProtocol_EmptyPage(t *testing.T) {
	doc, err := Document([]byte(`<html><body><p>gone</p></body></html>`))
	require.NoError(t, err)

	_, err = Protocol(doc, "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recognizable sections")
}
