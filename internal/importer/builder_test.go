package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfabrik/catalog-import/internal/types"
)

func newTestBuilder(t *testing.T, scopeCodes, attributeCodes []string, hooks Hooks) (*ProductBuilder, *fakeCategoryStore) {
	t.Helper()
	attributes, err := NewAttributeRegistry(context.Background(), &fakeAttributeStore{codes: attributeCodes}, false, nil, testReport(), hooks.AttributeCreated)
	require.NoError(t, err)
	categories := &fakeCategoryStore{nextID: 100}
	categoryRegistry, err := NewCategoryRegistry(context.Background(), categories, 2, testReport(), hooks.CategoryCreated)
	require.NoError(t, err)
	return NewProductBuilder(NewScopeResolver(scopeCodes), attributes, categoryRegistry, true, hooks), categories
}

func TestBuildRecordsMissingBothSections(t *testing.T) {
	builder, _ := newTestBuilder(t, nil, nil, Hooks{})
	product := parseNode(t, `<product><complex_data></complex_data></product>`)

	records := builder.BuildRecords(context.Background(), product)
	assert.Nil(t, records)
	assert.Equal(t, []string{"Missing <simple_data> or <stores> node."}, builder.Errors())
}

func TestBuildRecordsEmptySimpleData(t *testing.T) {
	builder, _ := newTestBuilder(t, nil, nil, Hooks{})
	product := parseNode(t, `<product><simple_data></simple_data></product>`)

	records := builder.BuildRecords(context.Background(), product)
	assert.Nil(t, records)
	assert.Equal(t, []string{"Invalid simple data."}, builder.Errors())
}

func TestBuildRecordsTwoScopes(t *testing.T) {
	builder, _ := newTestBuilder(t, []string{"de"}, []string{"sku", "name"}, Hooks{})
	product := parseNode(t, `<product>
		<stores><item>de</item></stores>
		<simple_data>
			<sku><default>SHIRT-1</default></sku>
			<name><default>Shirt</default><de>Hemd</de></name>
		</simple_data>
		<complex_data>
			<enum><item><_category>Men/Shirts</_category></item></enum>
		</complex_data>
	</product>`)

	records := builder.BuildRecords(context.Background(), product)
	require.Len(t, records, 2)
	assert.Empty(t, builder.Errors())

	defaultRecord, storeRecord := records[0], records[1]
	assert.Equal(t, "SHIRT-1", defaultRecord["sku"])
	assert.Nil(t, defaultRecord["_store"])
	assert.Equal(t, "Shirt", defaultRecord["name"])
	assert.Equal(t, []string{"Men/Shirts"}, defaultRecord["_category"])

	assert.Nil(t, storeRecord["sku"])
	assert.Equal(t, "de", storeRecord["_store"])
	assert.Equal(t, "Hemd", storeRecord["name"])
	_, hasCategory := storeRecord["_category"]
	assert.False(t, hasCategory, "complex data belongs to the default record only")
}

func TestBuildRecordsSkuMovesToDefault(t *testing.T) {
	builder, _ := newTestBuilder(t, []string{"de"}, []string{"sku", "name"}, Hooks{})
	product := parseNode(t, `<product>
		<stores><item>de</item></stores>
		<simple_data>
			<sku><de>SHIRT-2</de></sku>
			<name><de>Hemd</de></name>
		</simple_data>
	</product>`)

	records := builder.BuildRecords(context.Background(), product)
	require.Len(t, records, 2)

	assert.Equal(t, "SHIRT-2", records[0]["sku"])
	assert.Nil(t, records[1]["sku"])
	assert.Equal(t, "de", records[1]["_store"])
}

func TestBuildRecordsEmptyStoreScopeDropped(t *testing.T) {
	builder, _ := newTestBuilder(t, []string{"de"}, []string{"sku"}, Hooks{})
	product := parseNode(t, `<product>
		<stores><item>de</item></stores>
		<simple_data>
			<sku><default>SHIRT-3</default></sku>
		</simple_data>
	</product>`)

	records := builder.BuildRecords(context.Background(), product)
	require.Len(t, records, 1)
	assert.Equal(t, "SHIRT-3", records[0]["sku"])
}

func TestBuildRecordsUnknownScopeKeepsProduct(t *testing.T) {
	builder, _ := newTestBuilder(t, []string{"de"}, []string{"sku"}, Hooks{})
	product := parseNode(t, `<product>
		<stores><item>fr</item></stores>
		<simple_data>
			<sku><default>SHIRT-4</default></sku>
		</simple_data>
	</product>`)

	records := builder.BuildRecords(context.Background(), product)
	require.Len(t, records, 1)
	require.Len(t, builder.Errors(), 1)
	assert.Equal(t, "The store 'fr' does not exist in the system. Data regarding this store will not be imported.", builder.Errors()[0])
}

func TestBuildRecordsUnresolvedAttributeDropped(t *testing.T) {
	builder, _ := newTestBuilder(t, nil, []string{"sku"}, Hooks{})
	product := parseNode(t, `<product>
		<simple_data>
			<sku><default>SHIRT-5</default></sku>
			<unmapped><default>value</default></unmapped>
		</simple_data>
	</product>`)

	records := builder.BuildRecords(context.Background(), product)
	require.Len(t, records, 1)
	_, ok := records[0]["unmapped"]
	assert.False(t, ok)
}

func TestBuildRecordsInvalidComplexGroup(t *testing.T) {
	builder, _ := newTestBuilder(t, nil, []string{"sku"}, Hooks{})
	product := parseNode(t, `<product>
		<simple_data>
			<sku><default>SHIRT-6</default></sku>
		</simple_data>
		<complex_data>
			<enum>
				<item><a>1</a><b>2</b></item>
				<item><a>3</a></item>
			</enum>
		</complex_data>
	</product>`)

	records := builder.BuildRecords(context.Background(), product)
	assert.Nil(t, records)
	assert.Equal(t, []string{
		"Complex attribute at position 1 is invalid.",
		"Invalid complex data.",
	}, builder.Errors())
}

func TestBuildRecordsLastComplexGroupWins(t *testing.T) {
	builder, _ := newTestBuilder(t, nil, []string{"sku"}, Hooks{})
	product := parseNode(t, `<product>
		<simple_data>
			<sku><default>SHIRT-7</default></sku>
		</simple_data>
		<complex_data>
			<enum><item><_media_image>a.jpg</_media_image></item></enum>
			<enum><item><_media_image>b.jpg</_media_image></item></enum>
		</complex_data>
	</product>`)

	records := builder.BuildRecords(context.Background(), product)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"b.jpg"}, records[0]["_media_image"])
}

func TestBuildRecordsFailedCategoryDropped(t *testing.T) {
	builder, categories := newTestBuilder(t, nil, []string{"sku"}, Hooks{})
	categories.failOn = "Bad"
	product := parseNode(t, `<product>
		<simple_data>
			<sku><default>SHIRT-8</default></sku>
		</simple_data>
		<complex_data>
			<enum>
				<item><_category>Good</_category></item>
				<item><_category>Bad/Leaf</_category></item>
			</enum>
		</complex_data>
	</product>`)

	records := builder.BuildRecords(context.Background(), product)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Good"}, records[0]["_category"])
	require.Len(t, builder.Errors(), 1)
	assert.Contains(t, builder.Errors()[0], "can not be saved.")
}

func TestBuildRecordsSimpleDataHook(t *testing.T) {
	hooks := Hooks{
		AfterSimpleData: func(tr *SimpleDataTransport) {
			tr.Data.Set(types.DefaultScope, "imported_at", "2026-08-28")
		},
	}
	builder, _ := newTestBuilder(t, nil, []string{"sku"}, hooks)
	product := parseNode(t, `<product>
		<simple_data><sku><default>SHIRT-9</default></sku></simple_data>
	</product>`)

	records := builder.BuildRecords(context.Background(), product)
	require.Len(t, records, 1)
	assert.Equal(t, "2026-08-28", records[0]["imported_at"])
}

func TestBuildRecordsHookInvalidatesProduct(t *testing.T) {
	hooks := Hooks{
		AfterSimpleData: func(tr *SimpleDataTransport) {
			tr.Errors = append(tr.Errors, "price missing")
			tr.Invalidate = true
		},
	}
	builder, _ := newTestBuilder(t, nil, []string{"sku"}, hooks)
	product := parseNode(t, `<product>
		<simple_data><sku><default>SHIRT-10</default></sku></simple_data>
	</product>`)

	records := builder.BuildRecords(context.Background(), product)
	assert.Nil(t, records)
	assert.Equal(t, []string{"price missing"}, builder.Errors())
}

func TestBuildRecordsComplexDataHook(t *testing.T) {
	hooks := Hooks{
		AfterComplexData: func(tr *ComplexDataTransport) {
			tr.Data["_media_image"] = append(tr.Data["_media_image"], "placeholder.jpg")
		},
	}
	builder, _ := newTestBuilder(t, nil, []string{"sku"}, hooks)
	product := parseNode(t, `<product>
		<simple_data><sku><default>SHIRT-11</default></sku></simple_data>
		<complex_data>
			<enum><item><_media_image>front.jpg</_media_image></item></enum>
		</complex_data>
	</product>`)

	records := builder.BuildRecords(context.Background(), product)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"front.jpg", "placeholder.jpg"}, records[0]["_media_image"])
}
