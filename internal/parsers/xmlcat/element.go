// Package xmlcat parses product catalog XML files: whole-file structure
// validation and streaming extraction of individual <product> subtrees into
// a typed element tree.
package xmlcat

import (
	"encoding/xml"
	"strings"
)

// Element is one node of a parsed XML subtree: its name, accumulated
// character data and ordered child elements. Attributes are not used by the
// catalog format and are dropped.
type Element struct {
	Name     string
	Text     string
	Children []*Element
}

// UnmarshalXML decodes an element and its whole subtree.
func (e *Element) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	e.Name = start.Name.Local
	var text strings.Builder
	for {
		token, err := d.Token()
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.StartElement:
			child := &Element{}
			if err := child.UnmarshalXML(d, t); err != nil {
				return err
			}
			e.Children = append(e.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			e.Text = text.String()
			return nil
		}
	}
}

// Child returns the first direct child with the given name, or nil.
func (e *Element) Child(name string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// HasChild reports whether a direct child with the given name exists.
func (e *Element) HasChild(name string) bool {
	return e.Child(name) != nil
}

// Value returns the element's character data with surrounding whitespace
// removed. Safe on nil.
func (e *Element) Value() string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Text)
}

// ChildNames returns the names of all direct children in document order.
func (e *Element) ChildNames() []string {
	names := make([]string, 0, len(e.Children))
	for _, c := range e.Children {
		names = append(names, c.Name)
	}
	return names
}
