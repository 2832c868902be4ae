// Package catalog defines the persistence collaborators of the import
// pipeline: product attributes, the category tree, store scopes, bulk row
// import and the cross-process run lock. The importer only sees these
// interfaces; the Postgres implementations live in this package too.
package catalog

import (
	"context"

	"github.com/shopfabrik/catalog-import/internal/types"
)

// NewAttribute describes a product attribute about to be created. Creation
// hooks receive it before the save and may mutate it.
type NewAttribute struct {
	Code           string
	FrontendLabel  string
	FrontendInput  string
	BackendType    string
	IsGlobal       bool
	IsVisible      bool
	IsUserDefined  bool
	IsSearchable   bool
	IsFilterable   bool
	IsComparable   bool
	IsConfigurable bool
	ApplyTo        string
	DefaultValue   string
}

// CategoryNode is one node of the persisted category tree.
type CategoryNode struct {
	ID       int64
	ParentID int64
	Name     string
}

// NewCategory describes a category about to be created. Path is the numeric
// id path of its ancestors (e.g. "1/2/14"); creation hooks receive the
// value before the save and may mutate it.
type NewCategory struct {
	Name        string
	ParentID    int64
	Path        string
	IsActive    bool
	DisplayMode string
}

// AttributeStore provides read and create access to product attributes.
type AttributeStore interface {
	AttributeCodes(ctx context.Context) ([]string, error)
	CreateAttribute(ctx context.Context, attr *NewAttribute) error
}

// CategoryStore provides read and create access to the category tree.
type CategoryStore interface {
	CategoryTree(ctx context.Context) ([]CategoryNode, error)
	CreateCategory(ctx context.Context, cat *NewCategory) (int64, error)
}

// ScopeStore lists the store scope codes registered in the host system.
type ScopeStore interface {
	ScopeCodes(ctx context.Context) ([]string, error)
}

// BulkImporter accepts the full ordered record list for one file and
// reports processed/invalid counts plus newly created SKUs. The importer
// treats it as a black box and never retries failed rows.
type BulkImporter interface {
	ImportRecords(ctx context.Context, records []types.FlatRecord) (*types.ImportResult, error)
}

// Locker serializes concurrent import runs via a named advisory lock.
// Acquire returns false without error when the lock is held elsewhere.
type Locker interface {
	Acquire(ctx context.Context, name string) (bool, error)
	Release(ctx context.Context, name string) error
}

// RunStore records import runs for the ops API.
type RunStore interface {
	StartRun(ctx context.Context, source types.RunSource) (string, error)
	FinishRun(ctx context.Context, id string, status types.RunStatus, files, records, errorCount int) error
}
