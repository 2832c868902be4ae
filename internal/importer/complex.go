package importer

import (
	"strings"

	"github.com/shopfabrik/catalog-import/internal/parsers/charset"
	"github.com/shopfabrik/catalog-import/internal/parsers/xmlcat"
)

// ExtractGroup turns one complex "enum" group into a mapping of attribute
// name to the ordered list of values across the group's items. A group with
// no items yields an empty mapping. The first item defines the expected
// child structure; any later item with a different child count or a child
// name outside that set fails the whole group, reported by ok=false.
func ExtractGroup(group *xmlcat.Element) (map[string][]string, bool) {
	if !validateGroupStructure(group) {
		return nil, false
	}

	data := make(map[string][]string)
	for _, item := range group.Children {
		for _, child := range item.Children {
			value := strings.TrimSpace(charset.DecodeNumericEntities(child.Text))
			data[child.Name] = append(data[child.Name], value)
		}
	}
	return data, true
}

func validateGroupStructure(group *xmlcat.Element) bool {
	if len(group.Children) == 0 {
		return true
	}

	var expected map[string]bool
	expectedCount := 0
	for _, item := range group.Children {
		if expected == nil {
			expected = make(map[string]bool, len(item.Children))
			for _, child := range item.Children {
				expected[child.Name] = true
				expectedCount++
			}
			continue
		}
		if len(item.Children) != expectedCount {
			return false
		}
		for _, child := range item.Children {
			if !expected[child.Name] {
				return false
			}
		}
	}
	return true
}
