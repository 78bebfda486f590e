// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paginationPage = `
<html><body>
<div id="tabs">
  <div id="tabs-1">
    <div class="outcome">
      1,234  result(s) found for your query.
      Displaying page   1 of 42.
    </div>
  </div>
</div>
</body></html>`

func TestResolvePagination(t *testing.T) {
	doc, err := Document([]byte(paginationPage))
	require.NoError(t, err)

	pages, results, err := ResolvePagination(doc)
	require.NoError(t, err)
	assert.Equal(t, 42, pages)
	assert.Equal(t, 1234, results)
}

func TestResolvePagination_SinglePage(t *testing.T) {
	doc, err := Document([]byte(`<div id="tabs"><div id="tabs-1">
		<div class="outcome">7 result(s) found. Displaying page 1 of 1.</div>
	</div></div>`))
	require.NoError(t, err)

	pages, results, err := ResolvePagination(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	assert.Equal(t, 7, results)
}

func TestResolvePagination_MissingRegion(t *testing.T) {
	doc, err := Document([]byte(`<html><body><p>maintenance page</p></body></html>`))
	require.NoError(t, err)

	_, _, err = ResolvePagination(doc)
	assert.ErrorIs(t, err, ErrPaginationNotFound)
}

func TestResolvePagination_UnexpectedText(t *testing.T) {
	doc, err := Document([]byte(`<div id="tabs-1"><div class="outcome">No trials matched.</div></div>`))
	require.NoError(t, err)

	_, _, err = ResolvePagination(doc)
	assert.ErrorIs(t, err, ErrPaginationNotFound)
}
