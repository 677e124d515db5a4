package mdast_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/mdstream/pkg/mdast"
)

func TestToMap(t *testing.T) {
	t.Parallel()

	doc := project(t, "## Hi\n\n- [x] a\n\n<citation><title>T</title><url>U</url></citation>")
	m := mdast.ToMap(doc)

	assert.Equal(t, "Document", m["type"])
	children, ok := m["children"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, children, 3)

	assert.Equal(t, "Heading", children[0]["type"])
	assert.Equal(t, 2, children[0]["level"])
	assert.Equal(t, []int{0, 5}, children[0]["span"])

	items, ok := children[1]["children"].([]map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, items[0]["checked"])

	cite, ok := children[2]["citation"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "T", cite["title"])
	assert.Equal(t, "U", cite["url"])
	assert.Equal(t, false, cite["authoritative"])
	assert.NotContains(t, cite, "favicon")
}

func TestToMap_Encodes(t *testing.T) {
	t.Parallel()

	nodes := project(t, "text with `code` and $x$").Children

	data, err := json.Marshal(mdast.ToMaps(nodes))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"InlineCode"`)
	assert.Contains(t, string(data), `"type":"LatexInline"`)

	out, err := yaml.Marshal(mdast.ToMaps(nodes))
	require.NoError(t, err)
	assert.Contains(t, string(out), "type: Paragraph")
}

func TestToMap_Nil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, mdast.ToMap(nil))
}
