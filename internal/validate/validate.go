package validate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/kabirdoha/dohakit/internal/extension"
	"github.com/pterm/pterm"
	"github.com/samber/lo"
)

// Validate checks the package rooted at root. Every category runs regardless
// of earlier failures; nothing under root is modified.
func Validate(root string) *Report {
	pterm.Debug.Printf("Validating extension package at %s\n", root)
	return &Report{
		Root: root,
		Categories: []*CategoryResult{
			checkManifest(root),
			checkSourceFiles(root),
			checkContent(root),
			checkIcons(root),
		},
	}
}

func checkManifest(root string) *CategoryResult {
	res := newCategory(CategoryManifest, "manifest.json")
	rel := extension.ManifestFile

	if !checkExists(res, root, extension.RequiredFile{Path: rel, Description: "Manifest file"}) {
		return res
	}

	m, err := extension.ReadManifest(filepath.Join(root, rel))
	var fe *extension.FieldError
	var te *extension.TypeError
	switch {
	case errors.As(err, &fe):
		for _, field := range fe.Missing {
			res.fail(KindMissingField, rel, fmt.Sprintf("Missing required field: %s", field), err)
		}
		return res
	case errors.As(err, &te):
		res.fail(KindMalformedData, rel, fmt.Sprintf("Wrong type for field %s (expected %s)", te.Field, te.Expected), err)
		return res
	case err != nil:
		res.fail(KindMalformedData, rel, fmt.Sprintf("Manifest validation failed: %v", err), err)
		return res
	}
	res.ok(rel, "Manifest structure is valid")

	if err := checkVersion(m.Version); err != nil {
		res.warn(rel, fmt.Sprintf("Manifest version %q does not look like a version number: %v", m.Version, err))
	}
	return res
}

// checkVersion accepts what Chrome accepts for the manifest version: up to
// four dot-separated numbers, the first three readable as a semantic version.
func checkVersion(v string) error {
	parts := strings.Split(v, ".")
	if len(parts) > 4 {
		return fmt.Errorf("%d parts, at most 4 allowed", len(parts))
	}
	if len(parts) == 4 {
		if _, err := strconv.ParseUint(parts[3], 10, 16); err != nil {
			return fmt.Errorf("invalid fourth part %q", parts[3])
		}
		parts = parts[:3]
	}
	_, err := semver.NewVersion(strings.Join(parts, "."))
	return err
}

func checkSourceFiles(root string) *CategoryResult {
	res := newCategory(CategorySource, "source files")
	for _, f := range extension.SourceFiles {
		checkExists(res, root, f)
	}
	return res
}

func checkIcons(root string) *CategoryResult {
	res := newCategory(CategoryIcons, "icon files")
	for _, f := range extension.IconFiles() {
		checkExists(res, root, f)
	}
	return res
}

// checkContent validates the dohas directory. The manifest listing and the
// doha_*.json scan are separate report streams: a listed file can be missing,
// a present file can be malformed or unlisted, and each gets its own finding.
func checkContent(root string) *CategoryResult {
	res := newCategory(CategoryContent, "doha files")
	dir := filepath.Join(root, extension.ContentDir)

	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		res.fail(KindMissingFile, extension.ContentDir, "Dohas directory missing", err)
		return res
	}

	manifestRel := filepath.Join(extension.ContentDir, extension.ContentManifestFile)
	listed, ok := checkContentManifest(res, root, manifestRel)
	if !ok {
		return res
	}

	res.info(fmt.Sprintf("Manifest lists %d doha files", len(listed)))
	missing := lo.Filter(listed, func(name string, _ int) bool {
		st, err := os.Stat(filepath.Join(dir, name))
		return err != nil || !st.Mode().IsRegular()
	})
	if len(missing) > 0 {
		res.add(Finding{
			Kind:    KindDanglingReference,
			Path:    manifestRel,
			Message: fmt.Sprintf("Manifest lists files that don't exist: %s", strings.Join(missing, ", ")),
			Names:   missing,
		})
	}

	found, irregular, err := scanContentFiles(dir)
	if err != nil {
		res.fail(KindMalformedData, extension.ContentDir, fmt.Sprintf("Could not scan for doha files: %v", err), err)
		return res
	}
	if len(found) == 0 && len(irregular) == 0 {
		res.fail(KindEmptyContent, extension.ContentDir, "No doha files found", nil)
		return res
	}
	res.info(fmt.Sprintf("Found %d doha files", len(found)))

	for _, name := range irregular {
		res.fail(KindMalformedData, filepath.Join(extension.ContentDir, name),
			fmt.Sprintf("Doha file %s - Invalid: not a regular file", name), nil)
	}

	for _, name := range found {
		checkDoha(res, dir, name)
	}

	for _, name := range lo.Without(found, listed...) {
		res.warn(filepath.Join(extension.ContentDir, name),
			fmt.Sprintf("%s is not listed in %s and will never be shown", name, manifestRel))
	}
	return res
}

func checkContentManifest(res *CategoryResult, root, rel string) ([]string, bool) {
	path := filepath.Join(root, rel)
	m, err := extension.ReadContentManifest(path)
	var te *extension.TypeError
	switch {
	case errors.Is(err, os.ErrNotExist):
		res.fail(KindMissingFile, rel, fmt.Sprintf("Doha manifest file: %s - MISSING", rel), err)
		return nil, false
	case errors.Is(err, extension.ErrMissingField):
		res.ok(rel, fmt.Sprintf("Doha manifest file: %s - Valid JSON", rel))
		res.fail(KindMissingField, rel, "Manifest missing 'dohaFiles' field", err)
		return nil, false
	case errors.As(err, &te):
		res.ok(rel, fmt.Sprintf("Doha manifest file: %s - Valid JSON", rel))
		res.fail(KindMalformedData, rel, fmt.Sprintf("Wrong type for field %s (expected %s)", te.Field, te.Expected), err)
		return nil, false
	case err != nil:
		res.fail(KindMalformedData, rel, fmt.Sprintf("Doha manifest file: %s - Invalid JSON: %v", rel, err), err)
		return nil, false
	}
	res.ok(rel, fmt.Sprintf("Doha manifest file: %s - Valid JSON", rel))
	return m.DohaFiles, true
}

func checkDoha(res *CategoryResult, dir, name string) {
	rel := filepath.Join(extension.ContentDir, name)
	_, err := extension.ReadDoha(filepath.Join(dir, name))
	var fe *extension.FieldError
	var te *extension.TypeError
	switch {
	case errors.As(err, &fe):
		res.fail(KindMissingField, rel, fmt.Sprintf("%s missing field: %s", name, strings.Join(fe.Missing, ", ")), err)
	case errors.As(err, &te):
		res.fail(KindMalformedData, rel, fmt.Sprintf("Doha file %s - Wrong type for field %s (expected %s)", name, te.Field, te.Expected), err)
	case err != nil:
		res.fail(KindMalformedData, rel, fmt.Sprintf("Doha file %s - Invalid JSON: %v", name, err), err)
	default:
		res.ok(rel, fmt.Sprintf("Doha file %s - Valid JSON", name))
	}
}

// scanContentFiles returns the entries in dir matching the doha naming
// pattern, sorted by name. Regular files come back in found; anything else
// (directories, dangling links) in irregular.
func scanContentFiles(dir string) (found, irregular []string, err error) {
	matches, err := filepath.Glob(filepath.Join(dir, extension.ContentPattern))
	if err != nil {
		return nil, nil, err
	}
	for _, m := range matches {
		name := filepath.Base(m)
		st, err := os.Stat(m)
		if err != nil || !st.Mode().IsRegular() {
			irregular = append(irregular, name)
			continue
		}
		found = append(found, name)
	}
	return found, irregular, nil
}

// checkExists records whether a required file is present and returns true if it is.
func checkExists(res *CategoryResult, root string, f extension.RequiredFile) bool {
	if _, err := os.Stat(filepath.Join(root, f.Path)); err != nil {
		res.fail(KindMissingFile, f.Path, fmt.Sprintf("%s: %s - MISSING", f.Description, f.Path), err)
		return false
	}
	res.ok(f.Path, fmt.Sprintf("%s: %s", f.Description, f.Path))
	return true
}
