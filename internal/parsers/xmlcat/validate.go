package xmlcat

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopfabrik/catalog-import/internal/parsers/charset"
)

const (
	// RootNodeName is the expected document root of a catalog file.
	RootNodeName = "products"
	// ProductNodeName is the element holding one product subtree.
	ProductNodeName = "product"
)

// FileValidation classifies the structural state of one import file.
type FileValidation int

const (
	FileSyntaxError FileValidation = iota
	FileOK
	FileNoRootNode
	FileNoProductNodes
)

// ValidateFile streams through the file once and checks well-formedness,
// root node presence and the existence of at least one product node.
// On a syntax error the returned messages carry line information from the
// first error; validation stops there.
func ValidateFile(path string) (FileValidation, []string) {
	f, err := os.Open(path)
	if err != nil {
		return FileSyntaxError, []string{err.Error()}
	}
	defer f.Close()

	decoder := xml.NewDecoder(f)
	decoder.CharsetReader = charset.NewReader

	var (
		rootSeen     bool
		productCount int
		depth        int
	)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				return FileSyntaxError, []string{fmt.Sprintf("line %d: %s", syntaxErr.Line, syntaxErr.Msg)}
			}
			return FileSyntaxError, []string{err.Error()}
		}
		switch t := token.(type) {
		case xml.StartElement:
			if depth == 0 {
				if t.Name.Local != RootNodeName {
					return FileNoRootNode, nil
				}
				rootSeen = true
			} else if t.Name.Local == ProductNodeName {
				productCount++
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}

	if !rootSeen {
		return FileNoRootNode, nil
	}
	if productCount == 0 {
		return FileNoProductNodes, nil
	}
	return FileOK, nil
}
