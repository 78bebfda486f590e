// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_Normalization(t *testing.T) {
	assert.Equal(t, "plain", Scalar("plain").Text())
	assert.Equal(t, "first", Sequence(Scalar("first"), Scalar("second")).Text())
	assert.Equal(t, "", Sequence().Text())
	assert.Equal(t, "", Null().Text())
	assert.Equal(t, "", Mapping().Text())

	var nilNode *Node
	assert.Equal(t, "", nilNode.Text())
}

func TestMapping_DuplicateKeysSurvive(t *testing.T) {
	m := Mapping()
	m.Add("Phase", Scalar("I"))
	m.Add("Phase", Scalar("II"))

	require.Len(t, m.Pairs(), 2)

	// Get returns the first entry.
	v, ok := m.Get("Phase")
	require.True(t, ok)
	assert.Equal(t, "I", v.Text())
}

func TestSet_ReplacesFirstEntry(t *testing.T) {
	m := Mapping()
	m.Set("k", Scalar("a"))
	m.Set("k", Scalar("b"))

	require.Len(t, m.Pairs(), 1)
	v, _ := m.Get("k")
	assert.Equal(t, "b", v.Text())
}

func TestMarshalJSON_PreservesMappingOrder(t *testing.T) {
	m := Mapping(
		Pair{"zeta", Scalar("1")},
		Pair{"alpha", Sequence(Scalar("2"))},
		Pair{"null", Null()},
	)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"1","alpha":["2"],"null":null}`, string(data))
}

func TestMarshalJSON_Roundtrippable(t *testing.T) {
	data, err := json.Marshal(sampleTree())
	require.NoError(t, err)

	// The archive form must stay valid JSON for downstream consumers.
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "summary")
}
