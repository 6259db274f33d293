package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kabirdoha/dohakit/internal/extension"
	"github.com/kabirdoha/dohakit/pkg/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Validate and zip the extension for the Chrome Web Store",
	Long: `Validate the extension and zip it for upload to the Chrome Web Store.

Development files are left out of the archive: node_modules, .git, tests, logs,
.env and the icon generator scripts. Use --no-default-exclusions to zip
everything.

Packing stops if validation fails unless --force is given.`,
	Example: `  # Writes kabir-doha-<version>.zip to the current directory
  dohakit pack

  dohakit pack -o dist/extension.zip --verbose`,
	Args: cobra.NoArgs,
	RunE: runPack,
}

func init() {
	packCmd.Flags().StringP("output", "o", "", "Output zip path (default <name>-<version>.zip)")
	packCmd.Flags().Bool("force", false, "Pack even if validation fails")
	packCmd.Flags().Bool("no-default-exclusions", false, "Include development files in the archive")
	packCmd.Flags().BoolP("verbose", "v", false, "List excluded files")
}

type packInput struct {
	Root            string
	Output          string
	Force           bool
	ExcludeDefaults bool
	Verbose         bool
}

func runPack(cmd *cobra.Command, args []string) error {
	root, err := packageRoot(cmd)
	if err != nil {
		return fmt.Errorf("failed to resolve extension directory: %w", err)
	}
	in := packInput{Root: root}
	in.Output, _ = cmd.Flags().GetString("output")
	in.Force, _ = cmd.Flags().GetBool("force")
	in.ExcludeDefaults, _ = cmd.Flags().GetBool("no-default-exclusions")
	in.Verbose, _ = cmd.Flags().GetBool("verbose")

	_, err = packExtension(cmd.OutOrStdout(), in)
	return err
}

// packExtension validates and zips the extension, returning the archive path.
func packExtension(w io.Writer, in packInput) (string, error) {
	if err := validatePackage(w, in.Root); err != nil {
		if !in.Force {
			return "", fmt.Errorf("%w (use --force to pack anyway)", err)
		}
		pterm.Warning.WithWriter(w).Println("Packing despite failed validation (--force)")
	}

	out := in.Output
	if out == "" {
		out = defaultArchiveName(in.Root)
	}
	out, err := filepath.Abs(out)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}

	pterm.Fprintln(w)
	pterm.Info.WithWriter(w).Printf("Zipping %s...\n", in.Root)
	stats, err := util.ZipExtensionDirectory(in.Root, out, &util.ExtensionZipOptions{
		ExcludeDefaults: in.ExcludeDefaults,
		Verbose:         in.Verbose,
	})
	if err != nil {
		return "", fmt.Errorf("failed to zip extension: %w", err)
	}

	pterm.Success.WithWriter(w).Printf("Wrote %s (%d files, %s)\n", out, stats.FilesIncluded, util.FormatBytes(stats.BytesIncluded))
	if stats.FilesExcluded > 0 {
		pterm.Info.WithWriter(w).Printf("Excluded %d files (%s)\n", stats.FilesExcluded, util.FormatBytes(stats.BytesExcluded))
		for _, p := range stats.ExcludedPaths {
			pterm.Fprintln(w, "  - "+p)
		}
	}
	return out, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// defaultArchiveName derives <name>-<version>.zip from the extension manifest.
func defaultArchiveName(root string) string {
	m, err := extension.ReadManifest(filepath.Join(root, extension.ManifestFile))
	if err != nil {
		return "extension.zip"
	}
	name := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(m.Name), "-"), "-")
	if name == "" {
		name = "extension"
	}
	if m.Version == "" {
		return name + ".zip"
	}
	return name + "-" + m.Version + ".zip"
}
