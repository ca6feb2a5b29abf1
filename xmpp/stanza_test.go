package xmpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("full stanza", func(t *testing.T) {
		st, err := Parse(`<iq xmlns="jabber:client" to="bob@h/pc" from="alice@h/pc" id="_xmpp_bind1" version="1.0"><bind><resource>pc</resource></bind></iq>`)
		require.NoError(t, err)

		assert.Equal(t, "iq", st.Name)
		assert.Equal(t, "jabber:client", st.Namespace)
		assert.Equal(t, "bob@h/pc", st.To)
		assert.Equal(t, "alice@h/pc", st.From)
		assert.Equal(t, "_xmpp_bind1", st.ID)
		assert.Equal(t, "1.0", st.Version)
		assert.Equal(t, "pc", st.Root.Child("bind").ChildText("resource"))
	})

	t.Run("missing attributes yield empty strings", func(t *testing.T) {
		st, err := Parse(`<presence><status>online</status></presence>`)
		require.NoError(t, err)
		assert.Empty(t, st.To)
		assert.Empty(t, st.ID)
		assert.Equal(t, "online", st.Root.ChildText("status"))
	})

	t.Run("surrounding whitespace is tolerated", func(t *testing.T) {
		st, err := Parse("  <open version=\"1.0\"/>\n")
		require.NoError(t, err)
		assert.Equal(t, "open", st.Name)
	})

	t.Run("non-XML input is rejected before parsing", func(t *testing.T) {
		_, err := Parse("hello")
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "hello", perr.Raw)
		assert.Nil(t, perr.Err)
	})

	t.Run("malformed XML is a typed error", func(t *testing.T) {
		_, err := Parse("<open><nope></open>")
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Error(t, perr.Err)
	})
}

func TestNodeBuilder(t *testing.T) {
	n := Element("presence").
		SetAttr("to", "bob@h/pc").
		SetAttr("type", "available").
		SetAttr("xmlns", NSClient).
		Add(Element("status").SetText("online"))

	out, err := n.Marshal()
	require.NoError(t, err)
	assert.Contains(t, out, `<presence`)
	assert.Contains(t, out, `to="bob@h/pc"`)
	assert.Contains(t, out, `xmlns="jabber:client"`)
	assert.Contains(t, out, `<status>online</status>`)

	// Round trip back through the codec.
	st, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "presence", st.Name)
	assert.Equal(t, "available", st.Root.Attr("type"))
}

func TestNodeSetAttrReplaces(t *testing.T) {
	n := Element("iq").SetAttr("id", "a").SetAttr("id", "b")
	assert.Equal(t, "b", n.Attr("id"))
	assert.Len(t, n.Attrs, 1)
}

func TestNodeChildMissing(t *testing.T) {
	n := Element("message")
	assert.Nil(t, n.Child("body"))
	assert.Empty(t, n.ChildText("body"))
}
