package cmd

import (
	"fmt"
	"io"

	"github.com/kabirdoha/dohakit/internal/extension"
	"github.com/kabirdoha/dohakit/internal/validate"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:     "validate",
	Aliases: []string{"test", "check"},
	Short:   "Check the extension's files before deployment",
	Long: `Check that the unpacked extension is complete:

- manifest.json exists, is valid JSON and declares manifest_version, name,
  version and chrome_url_overrides
- src/ holds newtab.html, newtab.css and newtab.js
- dohas/manifest.json lists only files that exist, and every dohas/doha_*.json
  is valid JSON with hindi, english and translation fields
- icons/ holds icon16.png, icon48.png and icon128.png

Every check runs and is reported. The command exits with status 1 if any fails.

With --zip, a packed extension is unzipped to a temporary directory and checked
instead.`,
	Example: `  # Check the extension in the current directory
  dohakit validate

  # Check what pack produced
  dohakit validate --zip kabir-doha-1.0.0.zip`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().String("zip", "", "Validate a packed extension zip instead of a directory")
}

func runValidate(cmd *cobra.Command, args []string) error {
	if zipPath, _ := cmd.Flags().GetString("zip"); zipPath != "" {
		return validateArchive(cmd.OutOrStdout(), zipPath)
	}

	root, err := packageRoot(cmd)
	if err != nil {
		return fmt.Errorf("failed to resolve extension directory: %w", err)
	}
	return validatePackage(cmd.OutOrStdout(), root)
}

// validatePackage prints the report for root and returns an error if it failed.
func validatePackage(w io.Writer, root string) error {
	report := validate.Validate(root)
	validate.Print(w, report)
	if !report.Passed() {
		return fmt.Errorf("validation failed: %d problem(s) in %d categories", len(report.Failures()), len(report.FailedCategories()))
	}
	return nil
}

// validateArchive unzips a packed extension and validates its contents.
func validateArchive(w io.Writer, zipPath string) error {
	archive, err := extension.OpenArchive(zipPath)
	if err != nil {
		return err
	}
	defer archive.Cleanup()

	pterm.Info.WithWriter(w).Printf("Checking contents of %s\n", zipPath)
	return validatePackage(w, archive.Root)
}
