package importer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfabrik/catalog-import/internal/catalog"
)

func TestAttributeRegistryKnownCodes(t *testing.T) {
	store := &fakeAttributeStore{codes: []string{"SKU", "name"}}
	registry, err := NewAttributeRegistry(context.Background(), store, false, nil, testReport(), nil)
	require.NoError(t, err)

	assert.True(t, registry.Resolve(context.Background(), "sku"))
	assert.True(t, registry.Resolve(context.Background(), "SKU"))
	assert.True(t, registry.Resolve(context.Background(), "Name"))
	assert.Empty(t, registry.MissingAttributes())
	assert.Empty(t, store.created)
}

func TestAttributeRegistryParticularAttributes(t *testing.T) {
	store := &fakeAttributeStore{}
	registry, err := NewAttributeRegistry(context.Background(), store, false, nil, testReport(), nil)
	require.NoError(t, err)

	assert.True(t, registry.Resolve(context.Background(), "_category"))
	assert.True(t, registry.Resolve(context.Background(), "qty"))
	assert.True(t, registry.Resolve(context.Background(), "_media_image"))
	assert.Empty(t, registry.MissingAttributes())
}

func TestAttributeRegistryIgnoreList(t *testing.T) {
	store := &fakeAttributeStore{}
	registry, err := NewAttributeRegistry(context.Background(), store, false, []string{"Legacy_Field", " other "}, testReport(), nil)
	require.NoError(t, err)

	assert.True(t, registry.Resolve(context.Background(), "legacy_field"))
	assert.True(t, registry.Resolve(context.Background(), "OTHER"))
	assert.Empty(t, registry.MissingAttributes())
}

func TestAttributeRegistryMissingDeduplicated(t *testing.T) {
	store := &fakeAttributeStore{}
	registry, err := NewAttributeRegistry(context.Background(), store, false, nil, testReport(), nil)
	require.NoError(t, err)

	assert.False(t, registry.Resolve(context.Background(), "color"))
	assert.False(t, registry.Resolve(context.Background(), "Color"))
	assert.False(t, registry.Resolve(context.Background(), "material"))

	assert.Equal(t, []string{"color", "material"}, registry.MissingAttributes())
	assert.Empty(t, store.created)
}

func TestAttributeRegistryCreatesSelectAttribute(t *testing.T) {
	store := &fakeAttributeStore{}
	var hooked *catalog.NewAttribute
	registry, err := NewAttributeRegistry(context.Background(), store, true, nil, testReport(), func(attr *catalog.NewAttribute) {
		hooked = attr
		attr.FrontendLabel = "Color"
	})
	require.NoError(t, err)

	assert.True(t, registry.Resolve(context.Background(), "color"))

	require.Len(t, store.created, 1)
	created := store.created[0]
	assert.Same(t, hooked, created)
	assert.Equal(t, "color", created.Code)
	assert.Equal(t, "Color", created.FrontendLabel) // hook ran before save
	assert.Equal(t, "select", created.FrontendInput)
	assert.True(t, created.IsGlobal)
	assert.True(t, created.IsUserDefined)
	assert.Equal(t, "simple", created.ApplyTo)

	// second resolve must not create again
	assert.True(t, registry.Resolve(context.Background(), "color"))
	assert.Len(t, store.created, 1)
	assert.Equal(t, []string{"color"}, registry.MissingAttributes())
}

func TestAttributeRegistryCreateFailure(t *testing.T) {
	store := &fakeAttributeStore{createErr: fmt.Errorf("db down")}
	registry, err := NewAttributeRegistry(context.Background(), store, true, nil, testReport(), nil)
	require.NoError(t, err)

	assert.False(t, registry.Resolve(context.Background(), "color"))
	assert.Equal(t, []string{"color"}, registry.MissingAttributes())
}
