package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/kabirdoha/dohakit/internal/extension"
	"github.com/kabirdoha/dohakit/internal/icon"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var iconsCmd = &cobra.Command{
	Use:   "icons",
	Short: "Generate the extension icons",
	Long: `Generate icon16.png, icon48.png and icon128.png: a blue-to-purple gradient
tile with rounded corners and a white "क" in the middle.

The glyph is drawn with the first installed font that covers Devanagari. If
none is found a Latin "K" is drawn with the bundled Go font instead.`,
	Example: `  # Write icons into ./icons
  dohakit icons

  # Scale an existing logo instead of drawing the glyph
  dohakit icons --source logo.png

  # Extra sizes for the store listing
  dohakit icons --sizes 16,32,48,128 --out build/icons`,
	Args: cobra.NoArgs,
	RunE: runIcons,
}

func init() {
	iconsCmd.Flags().StringP("out", "o", "", "Output directory (default <dir>/icons)")
	iconsCmd.Flags().IntSlice("sizes", extension.IconSizes, "Icon sizes in pixels")
	iconsCmd.Flags().String("source", "", "PNG or JPEG logo to scale instead of drawing the glyph")
}

func runIcons(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	sizes, _ := cmd.Flags().GetIntSlice("sizes")
	source, _ := cmd.Flags().GetString("source")

	if out == "" {
		root, err := packageRoot(cmd)
		if err != nil {
			return fmt.Errorf("failed to resolve extension directory: %w", err)
		}
		out = filepath.Join(root, extension.IconsDir)
	}

	opts := icon.Options{Out: cmd.OutOrStdout()}
	if source != "" {
		img, err := icon.LoadSource(source)
		if err != nil {
			return fmt.Errorf("failed to load source image: %w", err)
		}
		opts.Source = img
	}

	if _, err := icon.Generate(out, sizes, opts); err != nil {
		return err
	}

	pterm.Println()
	pterm.Success.Println("All icons generated successfully!")
	pterm.Info.Printf("Icons are ready in %s\n", out)
	return nil
}
