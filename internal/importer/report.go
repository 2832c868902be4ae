package importer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopfabrik/catalog-import/internal/notify"
)

// Report collects the notice/error stream of one import run, mirrors it to
// the log (and optionally stdout), and sends the end-of-run email reports.
// Errors are kept grouped per file and product position for the report body.
type Report struct {
	logger zerolog.Logger
	mailer *notify.Mailer
	echo   bool

	start     time.Time
	fileCount int

	errorLines []string
	errorCount int
}

// NewReport creates a report writing to the given logger. mailer may be nil
// when notifications are not configured.
func NewReport(logger zerolog.Logger, mailer *notify.Mailer) *Report {
	return &Report{logger: logger, mailer: mailer}
}

// SetStdoutEcho toggles mirroring of every message to stdout, for CLI runs.
func (r *Report) SetStdoutEcho(echo bool) {
	r.echo = echo
}

// Start marks the beginning of a run.
func (r *Report) Start() {
	r.start = time.Now()
	r.errorLines = nil
	r.errorCount = 0
	r.fileCount = 0
	r.Notice("Starting import process.")
	r.Notice(fmt.Sprintf("System process ID: %d", os.Getpid()))
}

// Notice reports an informational message.
func (r *Report) Notice(message string) {
	r.echoLine(message)
	r.logger.Info().Msg(message)
}

// Error reports an error message and records it for the email report.
func (r *Report) Error(message string) {
	r.echoLine(message)
	r.logger.Error().Msg(message)
	r.errorCount++
	r.errorLines = append(r.errorLines, message)
}

// ErrorsForFile records product-level errors under their file and position.
// Position 0 marks file-level errors.
func (r *Report) ErrorsForFile(filename string, position int, errors []string) {
	for _, message := range errors {
		r.echoLine(message)
		r.logger.Error().Str("file", filename).Int("product", position).Msg(message)
		r.errorCount++
		if position > 0 {
			r.errorLines = append(r.errorLines, fmt.Sprintf("%s: product %d: %s", filename, position, message))
		} else {
			r.errorLines = append(r.errorLines, fmt.Sprintf("%s: %s", filename, message))
		}
	}
}

// SetFileCount records how many files the run found.
func (r *Report) SetFileCount(count int) {
	r.fileCount = count
	r.Notice(fmt.Sprintf("Number of files found in the import directory: %d", count))
}

// ErrorCount returns the number of errors reported so far.
func (r *Report) ErrorCount() int {
	return r.errorCount
}

// End closes the run: logs the duration and sends the error and
// missing-attributes reports when there is anything to send.
func (r *Report) End(ctx context.Context, missingAttributes []string) {
	taken := time.Since(r.start).Round(10 * time.Millisecond)
	r.Notice(fmt.Sprintf("Time taken: %s", taken))
	r.Notice("Import process done.")

	if r.mailer == nil {
		return
	}
	if err := r.mailer.SendErrorReport(ctx, r.errorLines); err != nil {
		r.logger.Error().Err(err).Msg("Failed to send error report")
	}
	if err := r.mailer.SendMissingAttributesReport(ctx, missingAttributes); err != nil {
		r.logger.Error().Err(err).Msg("Failed to send missing attributes report")
	}
}

func (r *Report) echoLine(message string) {
	if r.echo {
		fmt.Printf("[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), message)
	}
}
