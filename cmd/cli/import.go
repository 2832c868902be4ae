package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shopfabrik/catalog-import/internal/catalog"
	"github.com/shopfabrik/catalog-import/internal/database"
	"github.com/shopfabrik/catalog-import/internal/importer"
	"github.com/shopfabrik/catalog-import/internal/notify"
	"github.com/shopfabrik/catalog-import/internal/storage"
	"github.com/shopfabrik/catalog-import/internal/types"
)

var (
	importDir      string
	importLockName string
	importQuiet    bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Run a full catalog import",
	Long: `Run the complete import: collect pending XML files from the import
directory, validate each one, build flat per-scope product records, hand them
to the bulk importer, and move each file to the success or error directory.
Concurrent runs are serialized via a database advisory lock.`,
	Example: `  catalog-import import
  catalog-import import --dir /srv/import --lock nightly_import`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importDir, "dir", "", "Import directory (overrides config)")
	importCmd.Flags().StringVar(&importLockName, "lock", "", "Advisory lock name (overrides config)")
	importCmd.Flags().BoolVar(&importQuiet, "quiet", false, "Do not echo report messages to stdout")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	defer database.Close()

	importCfg := cfg.Import
	if importDir != "" {
		importCfg.ImportDir = importDir
	}
	if importLockName != "" {
		importCfg.LockName = importLockName
	}

	dirs, err := storage.NewDirs(importCfg.ImportDir, importCfg.SuccessDir, importCfg.ErrorDir)
	if err != nil {
		return err
	}

	mailer, err := notify.NewMailer(cfg.Notifications)
	if err != nil {
		return err
	}

	report := importer.NewReport(*logger, mailer)
	report.SetStdoutEcho(!importQuiet)

	store := catalog.NewStore(database.Pool())
	lock := catalog.NewAdvisoryLock(database.Pool())

	imp := importer.New(dirs, store, lock, report, importer.Hooks{}, importer.Options{
		CreateAttributes:  cfg.Preprocessing.CreateAttributes,
		CreateCategories:  cfg.Preprocessing.CreateCategories,
		IgnoredAttributes: cfg.Preprocessing.IgnoredAttributes,
		RootCategoryID:    cfg.Preprocessing.RootCategoryID,
		LockName:          importCfg.LockName,
		Source:            types.SourceCLI,
	})

	result, err := imp.Run(ctx)
	if err != nil {
		return fmt.Errorf("import run failed: %w", err)
	}

	displayImportResult(result, report.ErrorCount())

	switch result {
	case types.RunOK, types.RunNoFiles:
		return nil
	default:
		return fmt.Errorf("import finished with result %s", result)
	}
}

func displayImportResult(result types.RunResult, errorCount int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RESULT\tERRORS")
	fmt.Fprintln(w, "------\t------")
	fmt.Fprintf(w, "%s\t%d\n", result, errorCount)
	w.Flush()
}
