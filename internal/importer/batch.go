package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/shopfabrik/catalog-import/internal/catalog"
	"github.com/shopfabrik/catalog-import/internal/parsers/xmlcat"
	"github.com/shopfabrik/catalog-import/internal/storage"
	"github.com/shopfabrik/catalog-import/internal/types"
)

// Options configure one Importer.
type Options struct {
	CreateAttributes  bool
	CreateCategories  bool
	IgnoredAttributes []string
	RootCategoryID    int64
	LockName          string
	Source            types.RunSource
}

// Importer collects the pending import files, processes them one by one
// under a cross-process advisory lock, routes each file to the success or
// error directory, and reports the run. Processing within a run is strictly
// sequential.
type Importer struct {
	dirs       *storage.Dirs
	attributes catalog.AttributeStore
	categories catalog.CategoryStore
	scopes     catalog.ScopeStore
	bulk       catalog.BulkImporter
	locker     catalog.Locker
	runs       catalog.RunStore
	report     *Report
	metrics    *MetricsRecorder
	hooks      Hooks
	opts       Options
}

// New wires an Importer from its collaborators. runs may be nil when run
// records are not wanted (the validate-only CLI path).
func New(dirs *storage.Dirs, store *catalog.Store, locker catalog.Locker, report *Report, hooks Hooks, opts Options) *Importer {
	if opts.LockName == "" {
		opts.LockName = "catalog_import"
	}
	return &Importer{
		dirs:       dirs,
		attributes: store,
		categories: store,
		scopes:     store,
		bulk:       store,
		locker:     locker,
		runs:       store,
		report:     report,
		metrics:    NewMetricsRecorder(),
		hooks:      hooks,
		opts:       opts,
	}
}

// NewWithCollaborators wires an Importer from individual interfaces, used
// by tests and callers that fake parts of the persistence layer.
func NewWithCollaborators(dirs *storage.Dirs, attributes catalog.AttributeStore, categories catalog.CategoryStore, scopes catalog.ScopeStore, bulk catalog.BulkImporter, locker catalog.Locker, runs catalog.RunStore, report *Report, hooks Hooks, opts Options) *Importer {
	if opts.LockName == "" {
		opts.LockName = "catalog_import"
	}
	return &Importer{
		dirs:       dirs,
		attributes: attributes,
		categories: categories,
		scopes:     scopes,
		bulk:       bulk,
		locker:     locker,
		runs:       runs,
		report:     report,
		metrics:    NewMetricsRecorder(),
		hooks:      hooks,
		opts:       opts,
	}
}

// Run executes one whole import run and returns its result code. Only
// infrastructure failures (listing files, seeding the registries) surface
// as errors; per-file and per-product problems are collected in the report.
func (imp *Importer) Run(ctx context.Context) (types.RunResult, error) {
	started := time.Now()
	imp.report.Start()

	runID := imp.startRunRecord(ctx)

	files, err := imp.dirs.ListImportFiles()
	if err != nil {
		imp.finishRunRecord(ctx, runID, types.RunStatusFailed, 0, 0)
		return types.RunNoValidFiles, err
	}
	imp.report.SetFileCount(len(files))

	var (
		result      types.RunResult
		recordCount int
	)
	switch {
	case len(files) == 0:
		imp.report.Notice("No xml files found in import directory.")
		imp.report.End(ctx, nil)
		result = types.RunNoFiles
	default:
		locked, err := imp.locker.Acquire(ctx, imp.opts.LockName)
		if err != nil {
			imp.finishRunRecord(ctx, runID, types.RunStatusFailed, len(files), 0)
			return types.RunLocked, err
		}
		if !locked {
			imp.report.Error("Could not obtain lock.")
			imp.report.Error("Importing will not be performed.")
			imp.report.End(ctx, nil)
			result = types.RunLocked
		} else {
			result, recordCount, err = imp.processFiles(ctx, files)
			if releaseErr := imp.locker.Release(ctx, imp.opts.LockName); releaseErr != nil {
				imp.report.Error(fmt.Sprintf("Failed to release import lock: %v", releaseErr))
			}
			if err != nil {
				imp.finishRunRecord(ctx, runID, types.RunStatusFailed, len(files), recordCount)
				return result, err
			}
		}
	}

	status := types.RunStatusCompleted
	if result == types.RunLocked {
		status = types.RunStatusFailed
	}
	imp.finishRunRecord(ctx, runID, status, len(files), recordCount)
	imp.metrics.RecordRun(result.String(), time.Since(started))
	return result, nil
}

// processFiles seeds the per-run registries, then validates, builds and
// imports every file, moving it to the success or error directory.
func (imp *Importer) processFiles(ctx context.Context, files []string) (types.RunResult, int, error) {
	scopeCodes, err := imp.scopes.ScopeCodes(ctx)
	if err != nil {
		return types.RunNoValidFiles, 0, fmt.Errorf("failed to load store scopes: %w", err)
	}
	attributeRegistry, err := NewAttributeRegistry(ctx, imp.attributes, imp.opts.CreateAttributes, imp.opts.IgnoredAttributes, imp.report, imp.hooks.AttributeCreated)
	if err != nil {
		return types.RunNoValidFiles, 0, err
	}
	categoryRegistry, err := NewCategoryRegistry(ctx, imp.categories, imp.opts.RootCategoryID, imp.report, imp.hooks.CategoryCreated)
	if err != nil {
		return types.RunNoValidFiles, 0, err
	}
	builder := NewProductBuilder(NewScopeResolver(scopeCodes), attributeRegistry, categoryRegistry, imp.opts.CreateCategories, imp.hooks)

	validFiles := 0
	recordCount := 0
	for _, path := range files {
		name := filepath.Base(path)
		fileStarted := time.Now()
		imp.report.Notice(fmt.Sprintf("Processing file %s.", name))

		success, records := imp.importFile(ctx, builder, path)
		recordCount += records

		var moveErr error
		if success {
			validFiles++
			moveErr = imp.dirs.MoveToSuccess(path)
		} else {
			moveErr = imp.dirs.MoveToError(path)
		}
		if moveErr != nil {
			imp.report.Error(moveErr.Error())
		}
		imp.metrics.RecordFile(success, time.Since(fileStarted))
		imp.report.Notice(fmt.Sprintf("File %s processed.", name))
	}

	imp.report.End(ctx, attributeRegistry.MissingAttributes())

	switch {
	case validFiles == 0:
		return types.RunNoValidFiles, recordCount, nil
	case validFiles == len(files):
		return types.RunOK, recordCount, nil
	default:
		return types.RunPartiallyOK, recordCount, nil
	}
}

// importFile validates one file and, when structurally sound, builds and
// imports its products. The returned boolean is the routing decision. Files
// without a root node or without product nodes are treated as successful
// no-ops.
func (imp *Importer) importFile(ctx context.Context, builder *ProductBuilder, path string) (bool, int) {
	name := filepath.Base(path)
	imp.report.Notice("Validating file structure.")

	validation, messages := xmlcat.ValidateFile(path)
	switch validation {
	case xmlcat.FileSyntaxError:
		imp.report.ErrorsForFile(name, 0, messages)
		imp.report.Error("File has syntax errors.")
		return false, 0
	case xmlcat.FileNoRootNode:
		imp.report.Error("File is missing the root node.")
		return true, 0
	case xmlcat.FileNoProductNodes:
		imp.report.Notice("File has no product nodes.")
		return true, 0
	}
	imp.report.Notice("File structure valid.")

	imp.report.Notice("Preparing data.")
	records, err := imp.buildFileRecords(ctx, builder, path)
	if err != nil {
		imp.report.ErrorsForFile(name, 0, []string{err.Error()})
		return false, 0
	}
	imp.report.Notice("Data ready.")

	if len(records) == 0 {
		imp.report.ErrorsForFile(name, 0, []string{"File has no valid product nodes."})
		return false, 0
	}

	imp.report.Notice("Importing started.")
	imp.metrics.RecordRecords(len(records))
	result, err := imp.bulk.ImportRecords(ctx, records)
	if err != nil {
		imp.report.ErrorsForFile(name, 0, []string{err.Error()})
		return false, len(records)
	}

	imported := result.Processed > 0 && result.Processed > result.Invalid
	if !imported {
		imp.report.ErrorsForFile(name, 0, []string{"Data was not valid for import"})
		return false, len(records)
	}

	imp.hooks.afterImport(result.NewSKUs)
	imp.report.Notice("Importing completed.")
	return true, len(records)
}

// buildFileRecords streams product nodes and accumulates the flat records
// of the whole file before any import happens.
func (imp *Importer) buildFileRecords(ctx context.Context, builder *ProductBuilder, path string) ([]types.FlatRecord, error) {
	stream, err := xmlcat.OpenProductStream(path)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	name := filepath.Base(path)
	var records []types.FlatRecord
	position := 0
	for {
		node, err := stream.Next()
		if err != nil {
			break // io.EOF or a syntax error past validation
		}
		position++

		productRecords := builder.BuildRecords(ctx, node)
		if len(builder.Errors()) > 0 {
			imp.report.Error(fmt.Sprintf("Product at position %d has errors:", position))
		}
		if productRecords == nil {
			imp.report.Error("Product will not be imported")
			imp.metrics.RecordProduct(false)
		} else {
			records = append(records, productRecords...)
			imp.metrics.RecordProduct(true)
		}
		imp.report.ErrorsForFile(name, position, builder.Errors())
	}
	return records, nil
}

func (imp *Importer) startRunRecord(ctx context.Context) string {
	if imp.runs == nil {
		return ""
	}
	id, err := imp.runs.StartRun(ctx, imp.opts.Source)
	if err != nil {
		imp.report.Error(fmt.Sprintf("Failed to record import run: %v", err))
		return ""
	}
	return id
}

func (imp *Importer) finishRunRecord(ctx context.Context, id string, status types.RunStatus, files, records int) {
	if imp.runs == nil || id == "" {
		return
	}
	if err := imp.runs.FinishRun(ctx, id, status, files, records, imp.report.ErrorCount()); err != nil {
		imp.report.Error(fmt.Sprintf("Failed to finish import run record: %v", err))
	}
}
