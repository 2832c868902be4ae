package handlers

import (
	"context"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/shopfabrik/catalog-import/config"
	"github.com/shopfabrik/catalog-import/internal/catalog"
	"github.com/shopfabrik/catalog-import/internal/database"
	"github.com/shopfabrik/catalog-import/internal/importer"
	"github.com/shopfabrik/catalog-import/internal/notify"
	"github.com/shopfabrik/catalog-import/internal/storage"
	"github.com/shopfabrik/catalog-import/internal/types"
)

// importRunning guards against starting two runs from this process. The
// advisory lock still serializes runs across processes.
var importRunning atomic.Bool

// ImportStartedResponse is the 202 response when an import run is started.
type ImportStartedResponse struct {
	Status  string `json:"status"`
	PollURL string `json:"pollUrl"`
}

// ListRunsResponse is the response for listing import runs.
type ListRunsResponse struct {
	Runs  []database.ImportRun `json:"runs" jsonschema:"required"`
	Total int                  `json:"total" jsonschema:"required"`
}

// TriggerImport starts an import run asynchronously
// POST /internal/admin/import
// Returns 202 Accepted; progress is visible via the runs endpoints.
func TriggerImport(c *gin.Context) {
	cfg := config.Get()
	if cfg == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "configuration not loaded"})
		return
	}

	if !importRunning.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{"error": "an import run is already in progress"})
		return
	}

	go func() {
		defer importRunning.Store(false)
		runImport(context.Background(), cfg)
	}()

	c.JSON(http.StatusAccepted, ImportStartedResponse{
		Status:  "started",
		PollURL: "/internal/imports/runs",
	})
}

func runImport(ctx context.Context, cfg *config.Config) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "catalog-import").Logger()

	dirs, err := storage.NewDirs(cfg.Import.ImportDir, cfg.Import.SuccessDir, cfg.Import.ErrorDir)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to prepare import directories")
		return
	}
	mailer, err := notify.NewMailer(cfg.Notifications)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid notification configuration")
		return
	}

	report := importer.NewReport(logger, mailer)
	store := catalog.NewStore(database.Pool())
	lock := catalog.NewAdvisoryLock(database.Pool())

	imp := importer.New(dirs, store, lock, report, importer.Hooks{}, importer.Options{
		CreateAttributes:  cfg.Preprocessing.CreateAttributes,
		CreateCategories:  cfg.Preprocessing.CreateCategories,
		IgnoredAttributes: cfg.Preprocessing.IgnoredAttributes,
		RootCategoryID:    cfg.Preprocessing.RootCategoryID,
		LockName:          cfg.Import.LockName,
		Source:            types.SourceServer,
	})

	result, err := imp.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Import run failed")
		return
	}
	logger.Info().Str("result", result.String()).Msg("Import run finished")
}

// ListImportRuns returns the most recent import runs
// GET /internal/imports/runs
func ListImportRuns(c *gin.Context) {
	var query struct {
		Limit int `form:"limit" binding:"min=0,max=100"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runs, err := database.ListRuns(c.Request.Context(), query.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ListRunsResponse{Runs: runs, Total: len(runs)})
}

// GetImportRun returns one import run by id
// GET /internal/imports/runs/:runId
func GetImportRun(c *gin.Context) {
	run, err := database.GetRun(c.Request.Context(), c.Param("runId"))
	if err == pgx.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}
