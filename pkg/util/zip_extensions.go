package util

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/boyter/gocodewalker"
)

// DefaultExtensionExclusions lists what never belongs in a store upload:
// dependency and VCS directories, tests, logs, local config and the
// generator sources that sit next to the extension.
var DefaultExtensionExclusions = struct {
	// ExcludeDirectory: exact directory names (case-sensitive)
	ExcludeDirectory []string
	// ExcludeFilenamePatterns: filepath.Match patterns checked against the base name
	ExcludeFilenamePatterns []string
}{
	ExcludeDirectory: []string{
		"node_modules",
		".git",
		"__tests__",
		"coverage",
		"__pycache__",
	},

	ExcludeFilenamePatterns: []string{
		// Test files
		"*.test.js",
		"*.spec.js",
		"*_test.go",

		// Generator scripts
		"*.py",
		"*.go",

		// Local config, VCS and editor leftovers, logs, earlier builds
		".env",
		".gitignore",
		".ignore",
		".DS_Store",
		"*.log",
		"*.swp",
		"*.zip",
	},
}

// ExtensionZipOptions configures extension-specific zipping behavior
type ExtensionZipOptions struct {
	ExcludeDefaults bool // If true, don't apply default exclusions
	Verbose         bool // Track individual excluded files
}

// ZipStats tracks statistics about the zipping operation
type ZipStats struct {
	FilesIncluded int
	FilesExcluded int
	BytesIncluded int64
	BytesExcluded int64
	ExcludedPaths []string
}

func (s *ZipStats) addIncluded(bytes int64) {
	s.FilesIncluded++
	s.BytesIncluded += bytes
}

func (s *ZipStats) addExcluded(path string, bytes int64, verbose bool) {
	s.FilesExcluded++
	s.BytesExcluded += bytes
	if verbose {
		s.ExcludedPaths = append(s.ExcludedPaths, path)
	}
}

// ZipExtensionDirectory zips an unpacked extension for upload to the Chrome
// Web Store. Paths in the archive are relative to srcDir. destZip may live
// inside srcDir; it is never added to itself.
func ZipExtensionDirectory(srcDir, destZip string, opts *ExtensionZipOptions) (*ZipStats, error) {
	if opts == nil {
		opts = &ExtensionZipOptions{}
	}

	absDest, err := filepath.Abs(destZip)
	if err != nil {
		return nil, err
	}

	stats := &ZipStats{}

	zipFile, err := os.Create(destZip)
	if err != nil {
		return nil, err
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)
	defer zipWriter.Close()

	fileQueue := make(chan *gocodewalker.File, 256)
	walker := gocodewalker.NewFileWalker(srcDir, fileQueue)
	walker.IncludeHidden = true
	// The archive has to match the tree that was validated, so ignore files
	// must not hide anything from it.
	walker.IgnoreGitIgnore = true
	walker.IgnoreIgnoreFile = true
	walker.IgnoreGitModules = true
	if !opts.ExcludeDefaults {
		walker.ExcludeDirectory = append(walker.ExcludeDirectory, DefaultExtensionExclusions.ExcludeDirectory...)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- walker.Start()
	}()

	dirsAdded := make(map[string]struct{})

	for f := range fileQueue {
		if abs, err := filepath.Abs(f.Location); err == nil && abs == absDest {
			continue
		}

		relPath, err := filepath.Rel(srcDir, f.Location)
		if err != nil {
			walker.Terminate()
			return stats, err
		}
		relPath = filepath.ToSlash(relPath)

		fileInfo, err := os.Lstat(f.Location)
		if err != nil {
			walker.Terminate()
			return stats, err
		}

		if !opts.ExcludeDefaults && excludedByPattern(f.Filename) {
			stats.addExcluded(relPath, fileInfo.Size(), opts.Verbose)
			continue
		}
		// The store rejects packages containing symlinks.
		if fileInfo.Mode()&os.ModeSymlink != 0 {
			stats.addExcluded(relPath, 0, opts.Verbose)
			continue
		}

		if err := addParentDirs(zipWriter, relPath, dirsAdded); err != nil {
			walker.Terminate()
			return stats, err
		}

		written, err := addFile(zipWriter, f.Location, relPath)
		if err != nil {
			walker.Terminate()
			return stats, err
		}
		stats.addIncluded(written)
	}

	if err := <-errChan; err != nil {
		return stats, fmt.Errorf("directory walk failed: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return stats, fmt.Errorf("failed to finish archive: %w", err)
	}
	if err := zipFile.Close(); err != nil {
		return stats, fmt.Errorf("failed to write archive: %w", err)
	}
	return stats, nil
}

func excludedByPattern(filename string) bool {
	for _, pattern := range DefaultExtensionExclusions.ExcludeFilenamePatterns {
		if matched, err := filepath.Match(pattern, filename); err == nil && matched {
			return true
		}
	}
	return false
}

// addParentDirs makes sure every directory above relPath has an entry in the archive.
func addParentDirs(zw *zip.Writer, relPath string, added map[string]struct{}) error {
	dir := filepath.ToSlash(filepath.Dir(relPath))
	if dir == "." || dir == "" {
		return nil
	}
	var current string
	for _, segment := range strings.Split(dir, "/") {
		if current == "" {
			current = segment
		} else {
			current = current + "/" + segment
		}
		if _, exists := added[current+"/"]; exists {
			continue
		}
		if _, err := zw.Create(current + "/"); err != nil {
			return err
		}
		added[current+"/"] = struct{}{}
	}
	return nil
}

func addFile(zw *zip.Writer, path, relPath string) (int64, error) {
	w, err := zw.Create(relPath)
	if err != nil {
		return 0, err
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return io.Copy(w, file)
}
