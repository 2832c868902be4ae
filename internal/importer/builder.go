package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopfabrik/catalog-import/internal/parsers/charset"
	"github.com/shopfabrik/catalog-import/internal/parsers/xmlcat"
	"github.com/shopfabrik/catalog-import/internal/types"
)

// ScopedData holds the per-scope records of one product while it is being
// built. Scope order is fixed by the resolver: default first, declared
// scopes after it.
type ScopedData struct {
	scopes  []string
	records map[string]types.FlatRecord
}

// NewScopedData creates per-scope records for the given ordered scope set.
func NewScopedData(scopes []string) *ScopedData {
	records := make(map[string]types.FlatRecord, len(scopes))
	for _, scope := range scopes {
		records[scope] = types.FlatRecord{}
	}
	return &ScopedData{scopes: scopes, records: records}
}

// Scopes returns the scope set in iteration order.
func (d *ScopedData) Scopes() []string {
	return d.scopes
}

// Record returns the record being built for a scope.
func (d *ScopedData) Record(scope string) types.FlatRecord {
	return d.records[scope]
}

// Set stores one attribute value in a scope's record.
func (d *ScopedData) Set(scope, code string, value any) {
	d.records[scope][code] = value
}

func (d *ScopedData) dropScope(scope string) {
	delete(d.records, scope)
	for i, s := range d.scopes {
		if s == scope {
			d.scopes = append(d.scopes[:i], d.scopes[i+1:]...)
			return
		}
	}
}

// ProductBuilder turns one <product> subtree into flat per-scope records.
// It owns the per-run registries and the per-product error side channel.
type ProductBuilder struct {
	scopes           *ScopeResolver
	attributes       *AttributeRegistry
	categories       *CategoryRegistry
	createCategories bool
	hooks            Hooks

	errors []string
}

// NewProductBuilder wires a builder from the per-run registries.
func NewProductBuilder(scopes *ScopeResolver, attributes *AttributeRegistry, categories *CategoryRegistry, createCategories bool, hooks Hooks) *ProductBuilder {
	return &ProductBuilder{
		scopes:           scopes,
		attributes:       attributes,
		categories:       categories,
		createCategories: createCategories,
		hooks:            hooks,
	}
}

// BuildRecords validates and extracts one product node. It returns the flat
// records in scope order, or nil when the product cannot be imported; the
// per-call reasons are available via Errors. A non-nil result can still
// carry errors for individually dropped fields or categories.
func (b *ProductBuilder) BuildRecords(ctx context.Context, node *xmlcat.Element) []types.FlatRecord {
	b.errors = nil

	simpleData := node.Child("simple_data")
	storesNode := node.Child("stores")
	if simpleData == nil && storesNode == nil {
		b.errors = append(b.errors, "Missing <simple_data> or <stores> node.")
		return nil
	}

	scopes, scopeErrors := b.scopes.Resolve(storesNode)
	b.errors = append(b.errors, scopeErrors...)

	data := b.extractSimpleData(ctx, simpleData, scopes)
	if data == nil {
		b.errors = append(b.errors, "Invalid simple data.")
		return nil
	}

	data = b.afterSimpleData(data)
	if data == nil {
		return nil
	}

	complexData, ok := b.extractComplexData(node.Child("complex_data"))
	if !ok {
		b.errors = append(b.errors, "Invalid complex data.")
		return nil
	}

	complexData, ok = b.afterComplexData(ctx, complexData)
	if !ok {
		return nil
	}

	if len(complexData) > 0 {
		defaultRecord := data.Record(types.DefaultScope)
		for code, values := range complexData {
			defaultRecord[code] = values
		}
	}

	records := make([]types.FlatRecord, 0, len(data.Scopes()))
	for _, scope := range data.Scopes() {
		records = append(records, data.Record(scope))
	}
	return records
}

// Errors returns the messages collected by the most recent BuildRecords
// call.
func (b *ProductBuilder) Errors() []string {
	return b.errors
}

// extractSimpleData walks every leaf under <simple_data> and collects the
// per-scope values of attributes the registry resolves. Returns nil when
// the section is absent or empty.
func (b *ProductBuilder) extractSimpleData(ctx context.Context, simpleData *xmlcat.Element, scopes []string) *ScopedData {
	if simpleData == nil || len(simpleData.Children) == 0 {
		return nil
	}

	data := NewScopedData(scopes)
	for _, attributeNode := range simpleData.Children {
		for _, scope := range scopes {
			scopeNode := attributeNode.Child(scope)
			if scopeNode == nil {
				continue
			}
			value := strings.TrimSpace(scopeNode.Text)
			if value == "" {
				continue
			}
			value = charset.DecodeNumericEntities(value)
			if b.attributes.Resolve(ctx, attributeNode.Name) {
				data.Set(scope, strings.ToLower(attributeNode.Name), value)
			}
		}
	}
	return data
}

// afterSimpleData drops empty non-default scopes, places the SKU, and runs
// the post-simple-data hook. Exactly one record, the default one, carries
// the literal SKU; store-scoped records carry sku=nil and their own scope
// in _store.
func (b *ProductBuilder) afterSimpleData(data *ScopedData) *ScopedData {
	for _, scope := range append([]string(nil), data.Scopes()...) {
		if scope != types.DefaultScope && len(data.Record(scope)) == 0 {
			data.dropScope(scope)
		}
	}

	defaultRecord := data.Record(types.DefaultScope)
	if _, ok := defaultRecord.SKU(); !ok {
		// move the literal SKU from the first scope that declared it
		for _, scope := range data.Scopes() {
			if scope == types.DefaultScope {
				continue
			}
			if sku, ok := data.Record(scope).SKU(); ok {
				defaultRecord["sku"] = sku
				break
			}
		}
	}
	for _, scope := range data.Scopes() {
		record := data.Record(scope)
		if scope == types.DefaultScope {
			record["_store"] = nil
			continue
		}
		record["sku"] = nil
		record["_store"] = scope
	}

	transport := &SimpleDataTransport{Data: data}
	b.hooks.afterSimpleData(transport)
	b.errors = append(b.errors, transport.Errors...)
	if transport.Invalidate {
		return nil
	}
	return transport.Data
}

// extractComplexData merges all enum groups under <complex_data>. A
// structurally invalid group fails the whole product; colliding keys across
// groups resolve to the later group.
func (b *ProductBuilder) extractComplexData(complexData *xmlcat.Element) (map[string][]string, bool) {
	merged := map[string][]string{}
	if complexData == nil {
		return merged, true
	}

	for position, group := range complexData.Children {
		groupData, ok := ExtractGroup(group)
		if !ok {
			b.errors = append(b.errors, fmt.Sprintf("Complex attribute at position %d is invalid.", position+1))
			return nil, false
		}
		for code, values := range groupData {
			merged[code] = values
		}
	}
	return merged, true
}

// afterComplexData resolves category paths and runs the post-complex-data
// hook. Category paths that cannot be resolved or created are dropped from
// the list with an error instead of failing the product.
func (b *ProductBuilder) afterComplexData(ctx context.Context, complexData map[string][]string) (map[string][]string, bool) {
	if paths, ok := complexData["_category"]; ok && b.createCategories {
		kept := paths[:0]
		for _, path := range paths {
			if b.categories.ResolveOrCreate(ctx, path) {
				kept = append(kept, path)
			}
			b.errors = append(b.errors, b.categories.Errors()...)
		}
		complexData["_category"] = kept
	}

	transport := &ComplexDataTransport{Data: complexData}
	b.hooks.afterComplexData(transport)
	b.errors = append(b.errors, transport.Errors...)
	if transport.Invalidate {
		return nil, false
	}
	return transport.Data, true
}
