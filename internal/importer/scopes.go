package importer

import (
	"fmt"

	"github.com/shopfabrik/catalog-import/internal/parsers/xmlcat"
	"github.com/shopfabrik/catalog-import/internal/types"
)

// ScopeResolver filters a product's <stores> declaration against the store
// scopes registered in the system. Built once per run from the persisted
// scope codes.
type ScopeResolver struct {
	known map[string]bool
}

// NewScopeResolver builds a resolver for the given system scope codes.
// The default scope is always considered known.
func NewScopeResolver(codes []string) *ScopeResolver {
	known := make(map[string]bool, len(codes)+1)
	known[types.DefaultScope] = true
	for _, code := range codes {
		known[code] = true
	}
	return &ScopeResolver{known: known}
}

// Resolve returns the ordered scope set for one product node. The default
// scope is always present and always first; declared scopes unknown to the
// system are dropped with an error message instead of failing the product.
// A nil stores node yields just the default scope.
func (r *ScopeResolver) Resolve(stores *xmlcat.Element) ([]string, []string) {
	scopes := []string{types.DefaultScope}
	if stores == nil {
		return scopes, nil
	}

	var errors []string
	seen := map[string]bool{types.DefaultScope: true}
	for _, storeNode := range stores.Children {
		code := storeNode.Value()
		if seen[code] {
			continue
		}
		if !r.known[code] {
			errors = append(errors, fmt.Sprintf("The store '%s' does not exist in the system. Data regarding this store will not be imported.", code))
			continue
		}
		seen[code] = true
		scopes = append(scopes, code)
	}
	return scopes, errors
}
