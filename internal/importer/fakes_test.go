package importer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shopfabrik/catalog-import/internal/catalog"
	"github.com/shopfabrik/catalog-import/internal/types"
)

func testReport() *Report {
	return NewReport(zerolog.Nop(), nil)
}

type fakeAttributeStore struct {
	codes     []string
	created   []*catalog.NewAttribute
	createErr error
}

func (f *fakeAttributeStore) AttributeCodes(ctx context.Context) ([]string, error) {
	return f.codes, nil
}

func (f *fakeAttributeStore) CreateAttribute(ctx context.Context, attr *catalog.NewAttribute) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, attr)
	return nil
}

type fakeCategoryStore struct {
	nodes   []catalog.CategoryNode
	created []*catalog.NewCategory
	nextID  int64
	failOn  string
}

func (f *fakeCategoryStore) CategoryTree(ctx context.Context) ([]catalog.CategoryNode, error) {
	return f.nodes, nil
}

func (f *fakeCategoryStore) CreateCategory(ctx context.Context, cat *catalog.NewCategory) (int64, error) {
	if cat.Name == f.failOn {
		return 0, fmt.Errorf("save failed")
	}
	f.created = append(f.created, cat)
	f.nextID++
	return f.nextID, nil
}

type fakeScopeStore struct {
	codes []string
}

func (f *fakeScopeStore) ScopeCodes(ctx context.Context) ([]string, error) {
	return f.codes, nil
}

type fakeBulkImporter struct {
	batches [][]types.FlatRecord
	result  *types.ImportResult
	err     error
}

func (f *fakeBulkImporter) ImportRecords(ctx context.Context, records []types.FlatRecord) (*types.ImportResult, error) {
	f.batches = append(f.batches, records)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &types.ImportResult{Processed: len(records)}, nil
}

type fakeLocker struct {
	denied   bool
	acquired []string
	released []string
}

func (f *fakeLocker) Acquire(ctx context.Context, name string) (bool, error) {
	if f.denied {
		return false, nil
	}
	f.acquired = append(f.acquired, name)
	return true, nil
}

func (f *fakeLocker) Release(ctx context.Context, name string) error {
	f.released = append(f.released, name)
	return nil
}

type fakeRunStore struct {
	started  []types.RunSource
	finished []types.RunStatus
	files    int
	records  int
	errors   int
}

func (f *fakeRunStore) StartRun(ctx context.Context, source types.RunSource) (string, error) {
	f.started = append(f.started, source)
	return "run-1", nil
}

func (f *fakeRunStore) FinishRun(ctx context.Context, id string, status types.RunStatus, files, records, errorCount int) error {
	f.finished = append(f.finished, status)
	f.files = files
	f.records = records
	f.errors = errorCount
	return nil
}
