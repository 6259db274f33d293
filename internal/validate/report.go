// Package validate checks an unpacked Kabir Doha extension before it is
// loaded into Chrome or uploaded to the store.
package validate

import (
	"github.com/samber/lo"
)

// Category groups related checks. A package passes only if every category passes.
type Category string

const (
	CategoryManifest Category = "manifest"
	CategorySource   Category = "source"
	CategoryContent  Category = "content"
	CategoryIcons    Category = "icons"
)

// Kind classifies a finding.
type Kind int

const (
	KindOK Kind = iota
	KindInfo
	KindWarning
	KindMissingFile
	KindMalformedData
	KindMissingField
	KindDanglingReference
	KindEmptyContent
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindInfo:
		return "info"
	case KindWarning:
		return "warning"
	case KindMissingFile:
		return "missing file"
	case KindMalformedData:
		return "malformed data"
	case KindMissingField:
		return "missing field"
	case KindDanglingReference:
		return "dangling reference"
	case KindEmptyContent:
		return "empty content"
	default:
		return "unknown"
	}
}

// Failed reports whether a finding of this kind fails its category.
func (k Kind) Failed() bool {
	return k > KindWarning
}

// Finding is one line of the validation report.
type Finding struct {
	Kind    Kind
	Path    string // relative to the package root
	Message string
	// Names lists the file names a finding is about when there are several,
	// e.g. every dangling reference in the content manifest.
	Names []string
	Err   error
}

// CategoryResult is the outcome of one category of checks.
type CategoryResult struct {
	Category Category
	Title    string
	Passed   bool
	Findings []Finding
}

func newCategory(c Category, title string) *CategoryResult {
	return &CategoryResult{Category: c, Title: title, Passed: true}
}

func (c *CategoryResult) add(f Finding) {
	if f.Kind.Failed() {
		c.Passed = false
	}
	c.Findings = append(c.Findings, f)
}

func (c *CategoryResult) ok(path, msg string) {
	c.add(Finding{Kind: KindOK, Path: path, Message: msg})
}

func (c *CategoryResult) info(msg string) {
	c.add(Finding{Kind: KindInfo, Message: msg})
}

func (c *CategoryResult) warn(path, msg string) {
	c.add(Finding{Kind: KindWarning, Path: path, Message: msg})
}

func (c *CategoryResult) fail(kind Kind, path, msg string, err error) {
	c.add(Finding{Kind: kind, Path: path, Message: msg, Err: err})
}

// Report is the full result of validating one package.
type Report struct {
	Root       string
	Categories []*CategoryResult
}

// Passed reports whether every category passed.
func (r *Report) Passed() bool {
	return lo.EveryBy(r.Categories, func(c *CategoryResult) bool {
		return c.Passed
	})
}

// Category returns the result for c, or nil if it was not run.
func (r *Report) Category(c Category) *CategoryResult {
	res, _ := lo.Find(r.Categories, func(res *CategoryResult) bool {
		return res.Category == c
	})
	return res
}

// Findings returns every finding across categories, in report order.
func (r *Report) Findings() []Finding {
	return lo.FlatMap(r.Categories, func(c *CategoryResult, _ int) []Finding {
		return c.Findings
	})
}

// Failures returns the findings that failed their category.
func (r *Report) Failures() []Finding {
	return lo.Filter(r.Findings(), func(f Finding, _ int) bool {
		return f.Kind.Failed()
	})
}

// Warnings returns findings that are worth a look but don't fail the package.
func (r *Report) Warnings() []Finding {
	return lo.Filter(r.Findings(), func(f Finding, _ int) bool {
		return f.Kind == KindWarning
	})
}

// FailedCategories returns the categories that did not pass.
func (r *Report) FailedCategories() []Category {
	return lo.FilterMap(r.Categories, func(c *CategoryResult, _ int) (Category, bool) {
		return c.Category, !c.Passed
	})
}
