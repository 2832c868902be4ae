package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfabrik/catalog-import/internal/catalog"
)

func seededCategoryStore() *fakeCategoryStore {
	// 2 is the root category; 10 and 11 live under it
	return &fakeCategoryStore{
		nodes: []catalog.CategoryNode{
			{ID: 2, ParentID: 0, Name: "Root"},
			{ID: 10, ParentID: 2, Name: "Kategorien"},
			{ID: 11, ParentID: 10, Name: "Keramik"},
		},
		nextID: 100,
	}
}

func TestCategoryRegistryIndexSpellings(t *testing.T) {
	registry, err := NewCategoryRegistry(context.Background(), seededCategoryStore(), 2, testReport(), nil)
	require.NoError(t, err)

	tests := []struct {
		path string
		id   int64
	}{
		{"Root/Kategorien", 10},
		{"Kategorien", 10},
		{"10", 10},
		{"Root/Kategorien/Keramik", 11},
		{"Kategorien/Keramik", 11},
		{"11", 11},
	}
	for _, tt := range tests {
		id, ok := registry.ID(tt.path)
		assert.True(t, ok, tt.path)
		assert.Equal(t, tt.id, id, tt.path)
	}

	// root categories themselves are not name-indexed
	_, ok := registry.ID("Root")
	assert.False(t, ok)
}

func TestCategoryRegistryResolvesExistingWithoutSideEffects(t *testing.T) {
	store := seededCategoryStore()
	registry, err := NewCategoryRegistry(context.Background(), store, 2, testReport(), nil)
	require.NoError(t, err)

	assert.True(t, registry.ResolveOrCreate(context.Background(), "Kategorien/Keramik"))
	assert.Empty(t, registry.Errors())
	assert.Empty(t, store.created)
}

func TestCategoryRegistryCreatesAncestorsInOrder(t *testing.T) {
	store := &fakeCategoryStore{nextID: 100}
	var hookOrder []string
	registry, err := NewCategoryRegistry(context.Background(), store, 2, testReport(), func(cat *catalog.NewCategory) {
		hookOrder = append(hookOrder, cat.Name)
	})
	require.NoError(t, err)

	assert.True(t, registry.ResolveOrCreate(context.Background(), "A/B/C"))
	assert.Empty(t, registry.Errors())

	require.Len(t, store.created, 3)
	assert.Equal(t, []string{"A", "B", "C"}, hookOrder)

	a, b, c := store.created[0], store.created[1], store.created[2]
	assert.Equal(t, "A", a.Name)
	assert.Equal(t, int64(2), a.ParentID)
	assert.Equal(t, "1/2", a.Path)
	assert.True(t, a.IsActive)
	assert.Equal(t, "PRODUCTS", a.DisplayMode)

	assert.Equal(t, "B", b.Name)
	assert.Equal(t, int64(101), b.ParentID)
	assert.Equal(t, "1/2/101", b.Path)

	assert.Equal(t, "C", c.Name)
	assert.Equal(t, int64(102), c.ParentID)
	assert.Equal(t, "1/2/101/102", c.Path)

	// created prefixes are resolvable now
	id, ok := registry.ID("A/B")
	assert.True(t, ok)
	assert.Equal(t, int64(102), id)
}

func TestCategoryRegistryFailedAncestorAbortsChain(t *testing.T) {
	store := &fakeCategoryStore{nextID: 100, failOn: "B"}
	registry, err := NewCategoryRegistry(context.Background(), store, 2, testReport(), nil)
	require.NoError(t, err)

	assert.False(t, registry.ResolveOrCreate(context.Background(), "A/B/C"))

	// A was created, B failed, C was never attempted
	require.Len(t, store.created, 1)
	assert.Equal(t, "A", store.created[0].Name)

	errors := registry.Errors()
	require.NotEmpty(t, errors)
	assert.Contains(t, errors[len(errors)-1], "can not be saved.")

	_, ok := registry.ID("A/B/C")
	assert.False(t, ok)
}

func TestCategoryRegistryEmptyPathParts(t *testing.T) {
	registry, err := NewCategoryRegistry(context.Background(), &fakeCategoryStore{}, 2, testReport(), nil)
	require.NoError(t, err)

	assert.False(t, registry.ResolveOrCreate(context.Background(), "A//C"))
	require.Len(t, registry.Errors(), 1)
	assert.Equal(t, "Category [A//C] can not have empty path parts.", registry.Errors()[0])
}

func TestCategoryRegistryErrorsResetPerCall(t *testing.T) {
	store := &fakeCategoryStore{nextID: 100}
	registry, err := NewCategoryRegistry(context.Background(), store, 2, testReport(), nil)
	require.NoError(t, err)

	assert.False(t, registry.ResolveOrCreate(context.Background(), "A//C"))
	assert.NotEmpty(t, registry.Errors())

	assert.True(t, registry.ResolveOrCreate(context.Background(), "A/B"))
	assert.Empty(t, registry.Errors())
}
