package xmpp

import (
	"encoding/xml"
)

// Node is a generic XML element tree. It round-trips through encoding/xml
// and is used both for parsed inbound stanzas and for building outbound
// frames.
type Node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []Node     `xml:",any"`
	Text    string     `xml:",chardata"`
}

// Element starts a new node with the given local name.
func Element(local string) *Node {
	return &Node{XMLName: xml.Name{Local: local}}
}

// SetAttr sets an attribute, replacing any existing attribute with the same
// name. It returns the node for chaining.
func (n *Node) SetAttr(name, value string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Name.Local == name {
			n.Attrs[i].Value = value
			return n
		}
	}
	n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return n
}

// SetText sets the character data of the node.
func (n *Node) SetText(text string) *Node {
	n.Text = text
	return n
}

// Add appends a child element.
func (n *Node) Add(child *Node) *Node {
	n.Nodes = append(n.Nodes, *child)
	return n
}

// Attr returns the value of the named attribute, matching on the local name
// regardless of namespace. Missing attributes yield "".
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Child returns the first direct child with the given local name, or nil.
func (n *Node) Child(local string) *Node {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == local {
			return &n.Nodes[i]
		}
	}
	return nil
}

// ChildText returns the character data of the first direct child with the
// given local name, or "" when the child is absent.
func (n *Node) ChildText(local string) string {
	if c := n.Child(local); c != nil {
		return c.Text
	}
	return ""
}

// Marshal serializes the node as a single compact XML element.
func (n *Node) Marshal() (string, error) {
	out, err := xml.Marshal(n)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// String implements fmt.Stringer; serialization errors yield "".
func (n *Node) String() string {
	out, _ := n.Marshal()
	return out
}
