package cmd

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Metadata is set from build flags in main.
type Metadata struct {
	Version string
	Commit  string
	Date    string
}

var metadata = Metadata{Version: "dev"}

// envPackageDir names the env var holding the default package root.
const envPackageDir = "DOHAKIT_DIR"

var rootCmd = &cobra.Command{
	Use:   "dohakit",
	Short: "Build and check the Kabir Doha new-tab extension",
	Long: `dohakit generates the icons for the Kabir Doha new-tab extension and checks
the unpacked extension before it is loaded into Chrome or uploaded to the store.

Every command works on the extension directory given by --dir, falling back to
$DOHAKIT_DIR and then the current directory. A .env file in the current
directory is read first.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			pterm.EnableDebugMessages()
		}
		pterm.Debug.Printf("dohakit %s (commit %s, built %s)\n", metadata.Version, metadata.Commit, metadata.Date)
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			pterm.Warning.Printf("Could not read .env: %v\n", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("dir", "", "Extension directory (default $"+envPackageDir+" or current directory)")
	rootCmd.PersistentFlags().Bool("debug", false, "Print debug output")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(iconsCmd)
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(previewCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute(m Metadata) int {
	metadata = m
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(metadata.Version),
		fang.WithCommit(metadata.Commit),
	); err != nil {
		return 1
	}
	return 0
}

// packageRoot resolves the extension directory for a command.
func packageRoot(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if strings.TrimSpace(dir) == "" {
		dir = os.Getenv(envPackageDir)
	}
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	st, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !st.IsDir() {
		return "", errors.New(abs + " is not a directory")
	}
	return abs, nil
}
