package xmlcat

import (
	"encoding/xml"
	"io"
	"os"

	"github.com/shopfabrik/catalog-import/internal/parsers/charset"
)

// ProductStream reads product subtrees from a catalog file one at a time.
// The file is never loaded into memory as a whole; each call to Next
// expands exactly one <product> element into an Element tree.
type ProductStream struct {
	file    *os.File
	decoder *xml.Decoder
}

// OpenProductStream opens path for streaming product extraction.
func OpenProductStream(path string) (*ProductStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	decoder := xml.NewDecoder(f)
	decoder.CharsetReader = charset.NewReader
	return &ProductStream{file: f, decoder: decoder}, nil
}

// Next returns the next product subtree, or io.EOF when the file is
// exhausted.
func (s *ProductStream) Next() (*Element, error) {
	for {
		token, err := s.decoder.Token()
		if err != nil {
			return nil, err
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != ProductNodeName {
			continue
		}
		node := &Element{}
		if err := node.UnmarshalXML(s.decoder, start); err != nil {
			return nil, err
		}
		return node, nil
	}
}

// Close releases the underlying file.
func (s *ProductStream) Close() error {
	return s.file.Close()
}

var _ io.Closer = (*ProductStream)(nil)
