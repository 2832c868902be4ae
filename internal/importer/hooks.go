// Package importer turns product catalog XML files into flat per-scope
// attribute records and drives the whole import run: file validation,
// record building, bulk import handoff, directory routing and reporting.
package importer

import (
	"github.com/shopfabrik/catalog-import/internal/catalog"
)

// SimpleDataTransport is handed to the AfterSimpleData hook once per
// product, after simple values were collected and the SKU was placed. The
// hook may mutate Data, append Errors, or set Invalidate to drop the
// product entirely.
type SimpleDataTransport struct {
	Data       *ScopedData
	Errors     []string
	Invalidate bool
}

// ComplexDataTransport is handed to the AfterComplexData hook once per
// product, after enum groups were extracted and categories resolved. Same
// contract as SimpleDataTransport.
type ComplexDataTransport struct {
	Data       map[string][]string
	Errors     []string
	Invalidate bool
}

// Hooks are the injected extension points of the pipeline. All fields are
// optional; a nil hook is skipped.
type Hooks struct {
	// AfterSimpleData runs after simple values were collected for a product.
	AfterSimpleData func(t *SimpleDataTransport)
	// AfterComplexData runs after complex values were collected for a product.
	AfterComplexData func(t *ComplexDataTransport)
	// AttributeCreated runs before a missing attribute is saved and may
	// mutate the descriptor.
	AttributeCreated func(attr *catalog.NewAttribute)
	// CategoryCreated runs before a missing category is saved and may
	// mutate the descriptor.
	CategoryCreated func(cat *catalog.NewCategory)
	// AfterImport runs after a file's records were imported, with the SKUs
	// the bulk importer reported as newly created.
	AfterImport func(newSKUs []string)
}

func (h Hooks) afterSimpleData(t *SimpleDataTransport) {
	if h.AfterSimpleData != nil {
		h.AfterSimpleData(t)
	}
}

func (h Hooks) afterComplexData(t *ComplexDataTransport) {
	if h.AfterComplexData != nil {
		h.AfterComplexData(t)
	}
}

func (h Hooks) attributeCreated(attr *catalog.NewAttribute) {
	if h.AttributeCreated != nil {
		h.AttributeCreated(attr)
	}
}

func (h Hooks) categoryCreated(cat *catalog.NewCategory) {
	if h.CategoryCreated != nil {
		h.CategoryCreated(cat)
	}
}

func (h Hooks) afterImport(newSKUs []string) {
	if h.AfterImport != nil {
		h.AfterImport(newSKUs)
	}
}
