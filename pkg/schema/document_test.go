package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTree = `{
  "theme": {"colors": {"primary": "#000"}, "typography": {"fontFamily": "Inter"}},
  "root": {
    "id": "root", "type": "container",
    "children": [
      {"id": "h", "type": "heading", "content": "Hi"},
      {"id": "s", "type": "stack", "children": [{"id": "b", "type": "button", "props": {"variant": "primary"}, "content": "Go"}]}
    ]
  }
}`

func TestParseAcceptsAnyJSONValue(t *testing.T) {
	for _, in := range []string{`{"foo":1}`, `[1,2]`, `"text"`, `42`, `null`} {
		doc, err := Parse(in)
		require.NoError(t, err, in)
		assert.JSONEq(t, in, doc.String())
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"{not json", "", "   ", `{"a":1} trailing`} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestParseRejectsUnbalancedClosers(t *testing.T) {
	for _, in := range []string{`{"foo":1}}`, `{"foo":1}]`, `[1]]`, `[1]]]`, `{"a":{}}}`} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}

	doc, err := Parse("{\"foo\":1}\n\t ")
	require.NoError(t, err)
	assert.Equal(t, `{"foo":1}`, doc.String())
}

func TestParseStripsFence(t *testing.T) {
	doc, err := Parse("```json\n{\"foo\": 1}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"foo":1}`, doc.String())

	doc, err = Parse("```\n[1]\n```\n")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, doc.String())
}

func TestMarshalRoundTripsExactValue(t *testing.T) {
	doc, err := Parse(`{"foo": 1}`)
	require.NoError(t, err)

	out, err := json.Marshal(map[string]any{"data": doc})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"foo":1}}`, string(out))

	var back struct {
		Data *Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, doc.Equal(back.Data))
}

func TestRawReturnsCopy(t *testing.T) {
	doc, err := Parse(`{"foo":1}`)
	require.NoError(t, err)

	raw := doc.Raw()
	raw[2] = 'X'
	assert.Equal(t, `{"foo":1}`, doc.String())

	clone := doc.Clone()
	assert.True(t, clone.Equal(doc))
	assert.NotSame(t, doc, clone)
}

func TestTreeView(t *testing.T) {
	doc, err := Parse(sampleTree)
	require.NoError(t, err)

	tree, err := doc.Tree()
	require.NoError(t, err)
	require.NotNil(t, tree.Root)
	assert.Equal(t, "container", tree.Root.Type)
	assert.Equal(t, "#000", tree.Theme.Colors["primary"])
	assert.Equal(t, 4, tree.Count())
	assert.Equal(t, 1, tree.Types()["button"])

	var depths []int
	tree.Walk(func(n *Node, depth int) bool {
		depths = append(depths, depth)
		return n.Type != "stack"
	})
	assert.Equal(t, []int{0, 1, 1}, depths)
}

func TestTreeViewDoesNotValidate(t *testing.T) {
	doc, err := Parse(`{"foo":1}`)
	require.NoError(t, err)
	tree, err := doc.Tree()
	require.NoError(t, err)
	assert.Nil(t, tree.Root)
	assert.Equal(t, 0, tree.Count())

	arr, err := Parse(`[1]`)
	require.NoError(t, err)
	_, err = arr.Tree()
	assert.Error(t, err)
}
