package product

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Product is the identity of an installable unit.
type Product struct {
	Name         string
	Version      string
	Revision     string
	Label        string
	IsStandalone bool
	SortOrder    int64
	ArchivePath  string

	// Synthetic is set when the product was built ad hoc from a free-form
	// reference rather than from an archive in the catalog.
	Synthetic bool
}

// String returns the display form used for identity comparison.
func (p Product) String() string {
	switch {
	case p.Version == "":
		return p.Name
	case p.Revision == "":
		return p.Name + " " + p.Version
	default:
		return fmt.Sprintf("%s %s rev. %s", p.Name, p.Version, p.Revision)
	}
}

// Key returns the normalized identity tuple as a single string.
func (p Product) Key() string {
	return strings.ToLower(p.String())
}

// Equal reports whether p and other share the (name, version, revision) identity.
func (p Product) Equal(other Product) bool {
	return p.Key() == other.Key()
}

// MajorMinor returns the first two version components, e.g. "8.2".
func (p Product) MajorMinor() string {
	parts := versionParts(p.Version)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return strconv.Itoa(parts[0])
	default:
		return fmt.Sprintf("%d.%d", parts[0], parts[1])
	}
}

// Compare orders products by version, then revision. Names are not compared.
func (p Product) Compare(other Product) int {
	if c := compareVersions(p.Version, other.Version); c != 0 {
		return c
	}
	return compareNumeric(p.Revision, other.Revision)
}

// MatchesVersion reports whether the product version satisfies constraint.
// A plain dotted version is an exact match; anything else is evaluated as a
// semver constraint such as ">= 8.0, < 9".
func (p Product) MatchesVersion(constraint string) bool {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" {
		return true
	}
	if isDotted(constraint) {
		return p.Version == constraint
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false
	}
	v, err := semver.NewVersion(p.Version)
	if err != nil {
		return false
	}
	return c.Check(v)
}

// IsCompatibleWith reports whether a module targets the given standalone
// product. Modules are released per platform major.minor line.
func (p Product) IsCompatibleWith(standalone Product) bool {
	if p.IsStandalone || !standalone.IsStandalone {
		return false
	}
	mm := p.MajorMinor()
	return mm != "" && mm == standalone.MajorMinor()
}

func sortOrder(version, revision string) int64 {
	parts := versionParts(version)
	var order int64
	for i := 0; i < 3; i++ {
		order *= 100
		if i < len(parts) {
			order += int64(min(parts[i], 99))
		}
	}
	rev, _ := strconv.ParseInt(revision, 10, 64)
	return order*100000000 + rev%100000000
}

func versionParts(version string) []int {
	if version == "" {
		return nil
	}
	fields := strings.Split(version, ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return parts
		}
		parts = append(parts, n)
	}
	return parts
}

// compareVersions uses semver when both sides parse and falls back to
// component-wise comparison for four-part versions.
func compareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		if c := va.Compare(vb); c != 0 {
			return c
		}
	}

	pa, pb := versionParts(a), versionParts(b)
	for i := 0; i < max(len(pa), len(pb)); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

func compareNumeric(a, b string) int {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func isDotted(s string) bool {
	if s == "" {
		return false
	}
	for _, f := range strings.Split(s, ".") {
		if f == "" {
			return false
		}
		if _, err := strconv.Atoi(f); err != nil {
			return false
		}
	}
	return true
}
