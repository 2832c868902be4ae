package importer

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfabrik/catalog-import/internal/parsers/xmlcat"
)

func parseNode(t *testing.T, payload string) *xmlcat.Element {
	t.Helper()
	var e xmlcat.Element
	require.NoError(t, xml.Unmarshal([]byte(payload), &e))
	return &e
}

func TestScopeResolverNilStores(t *testing.T) {
	resolver := NewScopeResolver([]string{"de", "at"})
	scopes, errors := resolver.Resolve(nil)
	assert.Equal(t, []string{"default"}, scopes)
	assert.Empty(t, errors)
}

func TestScopeResolverDefaultAlwaysFirst(t *testing.T) {
	resolver := NewScopeResolver([]string{"de", "at"})
	stores := parseNode(t, `<stores><item>de</item><item>default</item><item>at</item></stores>`)

	scopes, errors := resolver.Resolve(stores)
	assert.Equal(t, []string{"default", "de", "at"}, scopes)
	assert.Empty(t, errors)
}

func TestScopeResolverDefaultAddedWhenOmitted(t *testing.T) {
	resolver := NewScopeResolver([]string{"de"})
	stores := parseNode(t, `<stores><item>de</item></stores>`)

	scopes, errors := resolver.Resolve(stores)
	assert.Equal(t, []string{"default", "de"}, scopes)
	assert.Empty(t, errors)
}

func TestScopeResolverUnknownScopeDropped(t *testing.T) {
	resolver := NewScopeResolver([]string{"de"})
	stores := parseNode(t, `<stores><item>de</item><item>fr</item></stores>`)

	scopes, errors := resolver.Resolve(stores)
	assert.Equal(t, []string{"default", "de"}, scopes)
	require.Len(t, errors, 1)
	assert.Equal(t, "The store 'fr' does not exist in the system. Data regarding this store will not be imported.", errors[0])
}

func TestScopeResolverDuplicatesIgnored(t *testing.T) {
	resolver := NewScopeResolver([]string{"de"})
	stores := parseNode(t, `<stores><item>de</item><item>de</item></stores>`)

	scopes, errors := resolver.Resolve(stores)
	assert.Equal(t, []string{"default", "de"}, scopes)
	assert.Empty(t, errors)
}
