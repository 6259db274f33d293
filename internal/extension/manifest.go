package extension

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
)

var (
	// ErrMalformed is returned when a file is not a valid JSON object.
	ErrMalformed = errors.New("invalid JSON")

	// ErrMissingField is matched by every *FieldError.
	ErrMissingField = errors.New("missing required field")

	// ErrWrongType is matched by every *TypeError.
	ErrWrongType = errors.New("wrong type for field")
)

// FieldError reports required fields absent from a decoded object.
type FieldError struct {
	Missing []string
}

func (e *FieldError) Error() string {
	if len(e.Missing) == 1 {
		return fmt.Sprintf("missing required field: %s", e.Missing[0])
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

func (e *FieldError) Is(target error) bool {
	return target == ErrMissingField
}

// TypeError reports a required field that is present in valid JSON but holds
// a value of the wrong shape. It also matches ErrMalformed.
type TypeError struct {
	Field    string
	Expected string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("wrong type for field %s: expected %s", e.Field, e.Expected)
}

func (e *TypeError) Is(target error) bool {
	return target == ErrWrongType || target == ErrMalformed
}

// Manifest is the subset of the Chrome extension manifest the package must declare.
type Manifest struct {
	ManifestVersion    int               `json:"manifest_version"`
	Name               string            `json:"name"`
	Version            string            `json:"version"`
	ChromeURLOverrides map[string]string `json:"chrome_url_overrides"`
}

// ManifestFields are the keys the top-level manifest must contain.
var ManifestFields = []string{"manifest_version", "name", "version", "chrome_url_overrides"}

// ContentManifest lists the doha records the new-tab page fetches.
type ContentManifest struct {
	DohaFiles []string `json:"dohaFiles"`
}

// ContentManifestFields are the keys the content manifest must contain.
var ContentManifestFields = []string{"dohaFiles"}

// Doha is a single couplet record. Unknown keys are ignored.
type Doha struct {
	Hindi       string `json:"hindi"`
	English     string `json:"english"`
	Translation string `json:"translation"`
}

// DohaFields are the keys every doha record must contain.
var DohaFields = []string{"hindi", "english", "translation"}

// ParseManifest decodes a top-level manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := decodeObject(data, ManifestFields, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseContentManifest decodes the doha content manifest. The list must be
// present and non-null, and every entry must be a non-empty file name.
func ParseContentManifest(data []byte) (*ContentManifest, error) {
	var m ContentManifest
	if err := decodeObject(data, ContentManifestFields, &m); err != nil {
		return nil, err
	}
	if m.DohaFiles == nil {
		return nil, &TypeError{Field: "dohaFiles", Expected: "a list of file names"}
	}
	for i, name := range m.DohaFiles {
		if name == "" {
			return nil, &TypeError{Field: fmt.Sprintf("dohaFiles[%d]", i), Expected: "a non-empty file name"}
		}
	}
	return &m, nil
}

// ParseDoha decodes a doha record.
func ParseDoha(data []byte) (*Doha, error) {
	var d Doha
	if err := decodeObject(data, DohaFields, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReadManifest reads and decodes the top-level manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	return readFile(path, ParseManifest)
}

// ReadContentManifest reads and decodes the content manifest at path.
func ReadContentManifest(path string) (*ContentManifest, error) {
	return readFile(path, ParseContentManifest)
}

// ReadDoha reads and decodes a doha record at path.
func ReadDoha(path string) (*Doha, error) {
	return readFile(path, ParseDoha)
}

func readFile[T any](path string, parse func([]byte) (*T, error)) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

// decodeObject checks that data is a JSON object holding every required key
// and then decodes it into v. Presence is checked on the raw object so a key
// set to a zero value still counts. A value of the wrong JSON type is a
// *TypeError rather than a syntax problem.
func decodeObject(data []byte, required []string, v any) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if raw == nil {
		return fmt.Errorf("%w: expected an object, got null", ErrMalformed)
	}

	var missing []string
	for _, field := range required {
		if _, ok := raw[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &FieldError{Missing: missing}
	}

	if err := json.Unmarshal(data, v); err != nil {
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) && ute.Field != "" {
			return &TypeError{Field: ute.Field, Expected: describeType(ute.Type)}
		}
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return nil
}

func describeType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Map, reflect.Struct:
		return "an object"
	case reflect.Slice, reflect.Array:
		return "a list"
	default:
		return t.String()
	}
}
