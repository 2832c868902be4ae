package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportCountsErrors(t *testing.T) {
	report := testReport()
	report.Start()

	report.Notice("Processing file catalog.xml.")
	report.Error("Could not obtain lock.")
	report.ErrorsForFile("catalog.xml", 2, []string{"Invalid simple data.", "Product will not be imported"})
	report.ErrorsForFile("catalog.xml", 0, []string{"File has syntax errors."})

	assert.Equal(t, 4, report.ErrorCount())
}

func TestReportStartResetsState(t *testing.T) {
	report := testReport()
	report.Start()
	report.Error("Could not obtain lock.")
	assert.Equal(t, 1, report.ErrorCount())

	report.Start()
	assert.Equal(t, 0, report.ErrorCount())
}
