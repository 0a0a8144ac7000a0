// Package version picks concrete package versions for npm-style constraints.
//
// Resolution is deterministic: for a fixed set of known versions and a fixed
// constraint, [Resolve] always returns the same version. The installer relies
// on this to treat the lockfile as a faithful record of past resolutions.
package version

import (
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Latest is the constraint that selects the highest known version,
// pre-releases included.
const Latest = "latest"

// Resolve returns the highest version in known that satisfies constraint.
//
// The constraint "latest" (or an empty constraint) selects the maximum version
// under semantic-version precedence, so {1.0.0, 1.2.0, 2.0.0-beta} resolves to
// 2.0.0-beta. Any other constraint is parsed as a semver range; an exact
// version is a range of one. As in npm, a pre-release version only satisfies
// a range that names a pre-release on the same major.minor.patch, so
// ">=1.0.0-alpha" accepts 1.0.0-beta but never 2.0.0-beta.
//
// Entries of known that are not valid versions are ignored. ok is false when
// nothing satisfies the constraint or the constraint cannot be parsed.
func Resolve(known []string, constraint string) (resolved string, ok bool) {
	versions := parse(known)
	if len(versions) == 0 {
		return "", false
	}

	constraint = strings.TrimSpace(constraint)
	if constraint == "" || constraint == Latest {
		return slices.MaxFunc(versions, compare).Original(), true
	}

	m, err := newMatcher(constraint)
	if err != nil {
		return "", false
	}

	var best *semver.Version
	for _, v := range versions {
		if m.check(v) && (best == nil || compare(v, best) > 0) {
			best = v
		}
	}
	if best == nil {
		return "", false
	}
	return best.Original(), true
}

// Satisfies reports whether v satisfies constraint. "latest" is satisfied by
// any valid version.
func Satisfies(v, constraint string) bool {
	sv, err := semver.NewVersion(v)
	if err != nil {
		return false
	}
	constraint = strings.TrimSpace(constraint)
	if constraint == "" || constraint == Latest {
		return true
	}
	m, err := newMatcher(constraint)
	if err != nil {
		return false
	}
	return m.check(sv)
}

// Sort returns the valid versions of known in ascending semver order.
func Sort(known []string) []string {
	versions := parse(known)
	slices.SortFunc(versions, compare)
	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = v.Original()
	}
	return out
}

// ParseSpec splits a "name@constraint" token. The separator is the last "@"
// after the first character, so scoped names such as "@types/node@^20" keep
// their leading "@". The constraint defaults to [Latest].
func ParseSpec(token string) (name, constraint string) {
	token = strings.TrimSpace(token)
	if i := strings.LastIndex(token, "@"); i > 0 {
		name, constraint = token[:i], strings.TrimSpace(token[i+1:])
	} else {
		name = token
	}
	if constraint == "" {
		constraint = Latest
	}
	return name, constraint
}

// prereleaseRef finds versions with a pre-release tag inside a range.
var prereleaseRef = regexp.MustCompile(`v?\d+\.\d+\.\d+-[0-9A-Za-z][0-9A-Za-z.-]*`)

// matcher applies a semver range with npm's pre-release tuple rule.
type matcher struct {
	c *semver.Constraints
	// tuples holds the major.minor.patch of every pre-release named in the range.
	tuples [][3]uint64
}

func newMatcher(constraint string) (*matcher, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, err
	}
	m := &matcher{c: c}
	for _, ref := range prereleaseRef.FindAllString(constraint, -1) {
		if v, err := semver.NewVersion(ref); err == nil {
			m.tuples = append(m.tuples, [3]uint64{v.Major(), v.Minor(), v.Patch()})
		}
	}
	return m, nil
}

func (m *matcher) check(v *semver.Version) bool {
	if !m.c.Check(v) {
		return false
	}
	if v.Prerelease() == "" {
		return true
	}
	return slices.Contains(m.tuples, [3]uint64{v.Major(), v.Minor(), v.Patch()})
}

func parse(known []string) []*semver.Version {
	versions := make([]*semver.Version, 0, len(known))
	for _, s := range known {
		if v, err := semver.NewVersion(s); err == nil {
			versions = append(versions, v)
		}
	}
	return versions
}

// compare orders by precedence and breaks ties on the original string so
// that equal-precedence spellings (build metadata) resolve deterministically.
func compare(a, b *semver.Version) int {
	if c := a.Compare(b); c != 0 {
		return c
	}
	return strings.Compare(a.Original(), b.Original())
}
