package extension

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Archive is a packed extension unzipped into a temporary directory.
type Archive struct {
	// Root is the directory holding the extension's manifest.json
	Root string

	// TempDir is the temporary directory the archive was extracted into (for cleanup)
	TempDir string
}

// Cleanup removes the extracted files.
func (a *Archive) Cleanup() {
	if a.TempDir != "" {
		os.RemoveAll(a.TempDir)
	}
}

// OpenArchive extracts a packed extension so it can be validated like an
// unpacked one. The manifest may sit at the top of the archive or inside a
// single top-level directory. The caller must call Archive.Cleanup.
func OpenArchive(zipPath string) (*Archive, error) {
	tempDir, err := os.MkdirTemp("", "dohakit-archive-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	a := &Archive{TempDir: tempDir, Root: tempDir}

	if err := unzip(zipPath, tempDir); err != nil {
		a.Cleanup()
		return nil, fmt.Errorf("failed to extract archive: %w", err)
	}

	if _, err := os.Stat(filepath.Join(tempDir, ManifestFile)); err == nil {
		return a, nil
	}
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		a.Cleanup()
		return nil, err
	}
	if len(entries) == 1 && entries[0].IsDir() {
		a.Root = filepath.Join(tempDir, entries[0].Name())
	}
	return a, nil
}

// unzip extracts a zip file to the destination directory. Symlinks are
// refused since the store rejects them anyway.
func unzip(zipPath, destDir string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open zip file: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		destPath := filepath.Join(destDir, file.Name)

		// zip slip
		if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path: %s", file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0755); err != nil {
				return err
			}
			continue
		}
		if file.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("archive contains a symlink: %s", file.Name)
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}
		if err := extractFile(file, destPath); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(file *zip.File, destPath string) error {
	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer destFile.Close()

	fileReader, err := file.Open()
	if err != nil {
		return err
	}
	defer fileReader.Close()

	if _, err := io.Copy(destFile, fileReader); err != nil {
		return err
	}
	return destFile.Close()
}
