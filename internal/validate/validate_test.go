package validate

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testManifest = `{
  "manifest_version": 3,
  "name": "Kabir Doha",
  "version": "1.0.0",
  "chrome_url_overrides": {"newtab": "src/newtab.html"}
}`
	testDoha1 = `{"hindi": "बुरा जो देखन मैं चला", "english": "Bura jo dekhan main chala", "translation": "I went looking for the bad"}`
	testDoha2 = `{"hindi": "पोथी पढ़ि पढ़ि जग मुआ", "english": "Pothi padhi padhi jag mua", "translation": "Reading books the world died"}`
)

// validPackage returns the files of a package that passes every check.
func validPackage() map[string]string {
	return map[string]string{
		"manifest.json":       testManifest,
		"src/newtab.html":     "<html></html>",
		"src/newtab.css":      "body {}",
		"src/newtab.js":       "// app",
		"icons/icon16.png":    "png",
		"icons/icon48.png":    "png",
		"icons/icon128.png":   "png",
		"dohas/manifest.json": `{"dohaFiles": ["doha_1.json", "doha_2.json"]}`,
		"dohas/doha_1.json":   testDoha1,
		"dohas/doha_2.json":   testDoha2,
	}
}

func writePackage(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return root
}

func kinds(findings []Finding) []Kind {
	out := make([]Kind, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Kind)
	}
	return out
}

func findingFor(t *testing.T, c *CategoryResult, path string) Finding {
	t.Helper()
	for _, f := range c.Findings {
		if f.Path == filepath.FromSlash(path) {
			return f
		}
	}
	t.Fatalf("no finding for %s in %s", path, c.Category)
	return Finding{}
}

func TestValidatePassing(t *testing.T) {
	root := writePackage(t, validPackage())

	r := Validate(root)
	assert.True(t, r.Passed())
	assert.Empty(t, r.Failures())
	assert.Empty(t, r.Warnings())
	require.Len(t, r.Categories, 4)
	for _, c := range r.Categories {
		assert.True(t, c.Passed, "category %s", c.Category)
	}
}

func TestValidateManifestMissingField(t *testing.T) {
	for _, field := range []string{"manifest_version", "name", "version", "chrome_url_overrides"} {
		t.Run(field, func(t *testing.T) {
			files := validPackage()
			files["manifest.json"] = removeKey(t, testManifest, field)
			r := Validate(writePackage(t, files))

			assert.False(t, r.Passed())
			assert.Equal(t, []Category{CategoryManifest}, r.FailedCategories())
			failures := r.Failures()
			require.Len(t, failures, 1)
			assert.Equal(t, KindMissingField, failures[0].Kind)
			assert.Contains(t, failures[0].Message, field)
		})
	}
}

func TestValidateManifestMissingOrMalformed(t *testing.T) {
	files := validPackage()
	delete(files, "manifest.json")
	r := Validate(writePackage(t, files))
	manifest := r.Category(CategoryManifest)
	require.NotNil(t, manifest)
	assert.False(t, manifest.Passed)
	assert.Equal(t, []Kind{KindMissingFile}, kinds(manifest.Findings))

	files = validPackage()
	files["manifest.json"] = `{"name": `
	r = Validate(writePackage(t, files))
	manifest = r.Category(CategoryManifest)
	assert.False(t, manifest.Passed)
	assert.Equal(t, []Kind{KindOK, KindMalformedData}, kinds(manifest.Findings))
}

func TestValidateManifestOddVersionWarns(t *testing.T) {
	files := validPackage()
	files["manifest.json"] = strings.Replace(testManifest, `"1.0.0"`, `"one point oh"`, 1)
	r := Validate(writePackage(t, files))

	assert.True(t, r.Passed())
	require.Len(t, r.Warnings(), 1)
	assert.Contains(t, r.Warnings()[0].Message, "one point oh")
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		version string
		valid   bool
	}{
		{"1.0.0", true},
		{"2.1", true},
		{"1.0.0.12", true},
		{"1.0.0.x", false},
		{"1.0.0.0.1", false},
		{"", false},
		{"one point oh", false},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			err := checkVersion(tt.version)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateSourceFilesAccumulate(t *testing.T) {
	files := validPackage()
	delete(files, "src/newtab.html")
	delete(files, "src/newtab.js")
	r := Validate(writePackage(t, files))

	src := r.Category(CategorySource)
	assert.False(t, src.Passed)
	assert.Equal(t, []Kind{KindMissingFile, KindOK, KindMissingFile}, kinds(src.Findings))
	assert.Equal(t, []Category{CategorySource}, r.FailedCategories())
}

func TestValidateIconsAccumulate(t *testing.T) {
	files := validPackage()
	delete(files, "icons/icon16.png")
	delete(files, "icons/icon128.png")
	r := Validate(writePackage(t, files))

	icons := r.Category(CategoryIcons)
	assert.False(t, icons.Passed)
	assert.Len(t, r.Failures(), 2)
	assert.Equal(t, KindOK, findingFor(t, icons, "icons/icon48.png").Kind)
}

func TestValidateDohaMissingFieldDoesNotStopOtherFiles(t *testing.T) {
	for _, field := range []string{"hindi", "english", "translation"} {
		t.Run(field, func(t *testing.T) {
			files := validPackage()
			files["dohas/doha_1.json"] = removeKey(t, testDoha1, field)
			r := Validate(writePackage(t, files))

			content := r.Category(CategoryContent)
			assert.False(t, content.Passed)
			bad := findingFor(t, content, "dohas/doha_1.json")
			assert.Equal(t, KindMissingField, bad.Kind)
			assert.Contains(t, bad.Message, field)
			assert.Equal(t, KindOK, findingFor(t, content, "dohas/doha_2.json").Kind)
		})
	}
}

func TestValidateMalformedDoha(t *testing.T) {
	files := validPackage()
	files["dohas/doha_1.json"] = `{"hindi": "`
	r := Validate(writePackage(t, files))

	content := r.Category(CategoryContent)
	assert.False(t, content.Passed)
	assert.Equal(t, KindMalformedData, findingFor(t, content, "dohas/doha_1.json").Kind)
	assert.Equal(t, KindOK, findingFor(t, content, "dohas/doha_2.json").Kind)
}

func TestValidateDanglingReference(t *testing.T) {
	files := validPackage()
	files["dohas/manifest.json"] = `{"dohaFiles": ["doha_1.json", "doha_2.json", "doha_missing.json", "doha_gone.json"]}`
	r := Validate(writePackage(t, files))

	assert.False(t, r.Passed())
	content := r.Category(CategoryContent)
	assert.False(t, content.Passed)

	failures := r.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, KindDanglingReference, failures[0].Kind)
	assert.Equal(t, []string{"doha_missing.json", "doha_gone.json"}, failures[0].Names)
	assert.Contains(t, failures[0].Message, "doha_missing.json")

	// the pattern scan still runs and reports the existing files
	assert.Equal(t, KindOK, findingFor(t, content, "dohas/doha_1.json").Kind)
	assert.Equal(t, KindOK, findingFor(t, content, "dohas/doha_2.json").Kind)
}

func TestValidateDanglingAndMalformedAreSeparate(t *testing.T) {
	files := validPackage()
	files["dohas/manifest.json"] = `{"dohaFiles": ["doha_1.json", "doha_2.json", "doha_3.json"]}`
	files["dohas/doha_1.json"] = `not json`
	r := Validate(writePackage(t, files))

	assert.ElementsMatch(t, []Kind{KindDanglingReference, KindMalformedData}, kinds(r.Failures()))
}

func TestValidateEmptyContentSet(t *testing.T) {
	files := validPackage()
	delete(files, "dohas/doha_1.json")
	delete(files, "dohas/doha_2.json")
	files["dohas/manifest.json"] = `{"dohaFiles": []}`
	r := Validate(writePackage(t, files))

	content := r.Category(CategoryContent)
	assert.False(t, content.Passed)
	assert.Equal(t, []Kind{KindOK, KindInfo, KindEmptyContent}, kinds(content.Findings))
}

func TestValidateContentPrerequisites(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(files map[string]string)
		kinds []Kind
	}{
		{
			name: "no content directory",
			edit: func(files map[string]string) {
				for k := range files {
					if strings.HasPrefix(k, "dohas/") {
						delete(files, k)
					}
				}
			},
			kinds: []Kind{KindMissingFile},
		},
		{
			name:  "no content manifest",
			edit:  func(files map[string]string) { delete(files, "dohas/manifest.json") },
			kinds: []Kind{KindMissingFile},
		},
		{
			name:  "content manifest not JSON",
			edit:  func(files map[string]string) { files["dohas/manifest.json"] = "dohaFiles:" },
			kinds: []Kind{KindMalformedData},
		},
		{
			name:  "content manifest without dohaFiles",
			edit:  func(files map[string]string) { files["dohas/manifest.json"] = `{"files": []}` },
			kinds: []Kind{KindOK, KindMissingField},
		},
		{
			name:  "null dohaFiles",
			edit:  func(files map[string]string) { files["dohas/manifest.json"] = `{"dohaFiles": null}` },
			kinds: []Kind{KindOK, KindMalformedData},
		},
		{
			name:  "null and empty entries",
			edit:  func(files map[string]string) { files["dohas/manifest.json"] = `{"dohaFiles": [null, ""]}` },
			kinds: []Kind{KindOK, KindMalformedData},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := validPackage()
			tt.edit(files)
			r := Validate(writePackage(t, files))

			content := r.Category(CategoryContent)
			assert.False(t, content.Passed)
			assert.Equal(t, tt.kinds, kinds(content.Findings))
			assert.Equal(t, []Category{CategoryContent}, r.FailedCategories())
		})
	}
}

func TestValidateListedNameMustBeRegularFile(t *testing.T) {
	files := validPackage()
	files["dohas/manifest.json"] = `{"dohaFiles": ["doha_1.json", "doha_2.json", "extra"]}`
	root := writePackage(t, files)
	require.NoError(t, os.Mkdir(filepath.Join(root, "dohas", "extra"), 0755))

	failures := Validate(root).Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, KindDanglingReference, failures[0].Kind)
	assert.Equal(t, []string{"extra"}, failures[0].Names)
}

func TestValidateDohaDirectoryIsInvalid(t *testing.T) {
	root := writePackage(t, validPackage())
	require.NoError(t, os.Mkdir(filepath.Join(root, "dohas", "doha_3.json"), 0755))

	r := Validate(root)
	content := r.Category(CategoryContent)
	assert.False(t, content.Passed)
	bad := findingFor(t, content, "dohas/doha_3.json")
	assert.Equal(t, KindMalformedData, bad.Kind)
	assert.Contains(t, bad.Message, "not a regular file")
	assert.Equal(t, KindOK, findingFor(t, content, "dohas/doha_1.json").Kind)
}

func TestValidateWrongFieldType(t *testing.T) {
	files := validPackage()
	files["manifest.json"] = strings.Replace(testManifest, `"manifest_version": 3`, `"manifest_version": "3"`, 1)
	files["dohas/doha_1.json"] = `{"hindi": ["line one", "line two"], "english": "e", "translation": "t"}`
	r := Validate(writePackage(t, files))

	manifest := r.Category(CategoryManifest)
	assert.Equal(t, []Kind{KindOK, KindMalformedData}, kinds(manifest.Findings))
	assert.Equal(t, "Wrong type for field manifest_version (expected a number)", manifest.Findings[1].Message)

	bad := findingFor(t, r.Category(CategoryContent), "dohas/doha_1.json")
	assert.Equal(t, KindMalformedData, bad.Kind)
	assert.Contains(t, bad.Message, "Wrong type for field hindi")
	assert.NotContains(t, bad.Message, "Invalid JSON")
}

func TestValidateOrphanedDohaWarns(t *testing.T) {
	files := validPackage()
	files["dohas/doha_3.json"] = testDoha1
	r := Validate(writePackage(t, files))

	assert.True(t, r.Passed())
	warnings := r.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, filepath.Join("dohas", "doha_3.json"), warnings[0].Path)
}

func TestValidateIgnoresNonMatchingFiles(t *testing.T) {
	files := validPackage()
	files["dohas/readme.json"] = "not even json"
	files["dohas/doha_draft.txt"] = "draft"
	r := Validate(writePackage(t, files))
	assert.True(t, r.Passed())
}

func TestPrint(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	t.Run("passing", func(t *testing.T) {
		var buf bytes.Buffer
		Print(&buf, Validate(writePackage(t, validPackage())))
		out := buf.String()
		assert.Contains(t, out, "Testing manifest.json...")
		assert.Contains(t, out, "Manifest structure is valid")
		assert.Contains(t, out, "Doha file doha_2.json - Valid JSON")
		assert.Contains(t, out, "All tests passed!")
		assert.Contains(t, out, "Load unpacked")
	})

	t.Run("failing", func(t *testing.T) {
		files := validPackage()
		files["dohas/manifest.json"] = `{"dohaFiles": ["doha_1.json", "doha_2.json", "doha_missing.json"]}`
		var buf bytes.Buffer
		Print(&buf, Validate(writePackage(t, files)))
		out := buf.String()
		assert.Contains(t, out, "Manifest lists files that don't exist: doha_missing.json")
		assert.Contains(t, out, "Doha file doha_1.json - Valid JSON")
		assert.Contains(t, out, "Some tests failed")
		assert.NotContains(t, out, "Next steps")
	})
}

// removeKey drops a top-level key from a JSON object literal.
func removeKey(t *testing.T, obj, key string) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(obj), &m))
	delete(m, key)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return string(data)
}
