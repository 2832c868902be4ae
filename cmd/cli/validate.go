package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shopfabrik/catalog-import/internal/parsers/xmlcat"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate catalog file structure without importing",
	Long: `Check one or more XML catalog files for syntax errors, root node
presence and product nodes. No database connection is needed and nothing is
imported or moved.`,
	Example: `  catalog-import validate catalog.xml
  catalog-import validate import/*.xml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "FILE\tSTATUS\tDETAIL")
	fmt.Fprintln(w, "----\t------\t------")

	failed := 0
	for _, path := range args {
		status, detail := describeValidation(path)
		if status != "OK" {
			failed++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", path, status, detail)
	}
	w.Flush()

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(args))
	}
	return nil
}

func describeValidation(path string) (string, string) {
	result, messages := xmlcat.ValidateFile(path)
	switch result {
	case xmlcat.FileOK:
		return "OK", "-"
	case xmlcat.FileNoRootNode:
		return "NO ROOT", "File is missing the root node."
	case xmlcat.FileNoProductNodes:
		return "EMPTY", "File has no product nodes."
	default:
		detail := "File has syntax errors."
		if len(messages) > 0 {
			detail = messages[0]
		}
		return "SYNTAX ERROR", detail
	}
}
