package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kabirdoha/dohakit/internal/extension"
	"github.com/pkg/browser"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Open the new-tab page in the default browser",
	Long: `Open src/newtab.html in the default browser to check the layout.

Doha records are fetched relative to the extension, so some browsers block them
when the page is opened from disk. Load the unpacked extension to see the full
page.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	root, err := packageRoot(cmd)
	if err != nil {
		return fmt.Errorf("failed to resolve extension directory: %w", err)
	}

	page := filepath.Join(root, extension.SourceFiles[0].Path)
	if _, err := os.Stat(page); err != nil {
		pterm.Error.Printf("New-tab page not found: %s\n", page)
		return err
	}

	pterm.Info.Printf("Opening %s...\n", page)
	if err := browser.OpenFile(page); err != nil {
		pterm.Warning.Printf("Could not open browser: %v\n", err)
		pterm.Info.Printf("Open this file manually: %s\n", page)
	}
	return nil
}
