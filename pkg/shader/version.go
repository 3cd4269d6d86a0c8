package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a host application version such as 3.6 or 4.1.
type Version struct {
	Major int
	Minor int
}

// DefaultVersion is used when no host version is configured.
var DefaultVersion = Version{Major: 4, Minor: 1}

// ParseVersion parses "MAJOR[.MINOR[.PATCH]]". The patch level is ignored.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) == 0 || parts[0] == "" {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("invalid major version in %q: %w", s, err)
	}
	v := Version{Major: major}
	if len(parts) > 1 {
		minor, err := strconv.Atoi(parts[1])
		if err != nil {
			return Version{}, fmt.Errorf("invalid minor version in %q: %w", s, err)
		}
		v.Minor = minor
	}
	return v, nil
}

// AtLeast reports whether v >= major.minor.
func (v Version) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// rename records an identifier change at a version boundary.
type rename struct {
	generic  string
	concrete string
	since    Version
}

// Principled socket renames. Recipes are written against the generic
// (pre-4.0) identifiers.
var renames = []rename{
	{"Emission", "Emission Color", Version{4, 0}},
	{"Specular", "Specular IOR Level", Version{4, 0}},
	{"Subsurface", "Subsurface Weight", Version{4, 0}},
	{"Clearcoat", "Coat Weight", Version{4, 0}},
	{"Clearcoat Roughness", "Coat Roughness", Version{4, 0}},
	{"Clearcoat Normal", "Coat Normal", Version{4, 0}},
	{"Sheen", "Sheen Weight", Version{4, 0}},
	{"Transmission", "Transmission Weight", Version{4, 0}},
}

var renameIndex = func() map[string]rename {
	m := make(map[string]rename, len(renames))
	for _, r := range renames {
		m[r.generic] = r
	}
	return m
}()

// Resolve maps a generic socket identifier to the one used by the given
// host version. Identifiers without a rename are returned unchanged.
func Resolve(generic string, v Version) string {
	r, ok := renameIndex[generic]
	if !ok || !v.AtLeast(r.since.Major, r.since.Minor) {
		return generic
	}
	return r.concrete
}

// Rename is one row of the rename table, exported for reporting.
type Rename struct {
	Generic  string `yaml:"generic"`
	Concrete string `yaml:"concrete"`
	Since    string `yaml:"since"`
}

// Renames lists the rename table in declaration order.
func Renames() []Rename {
	out := make([]Rename, len(renames))
	for i, r := range renames {
		out[i] = Rename{Generic: r.generic, Concrete: r.concrete, Since: r.since.String()}
	}
	return out
}
