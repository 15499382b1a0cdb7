// Decides the order tags are reported in.
package tags

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	bsemver "github.com/blang/semver/v4"
)

const (
	OrderGiven  = "given"  // Leave tags as listed
	OrderSemver = "semver" // Sort by semantic version
)

var ErrUnknownOrder = errors.New("unknown tag order")

// Tags that could not be sorted because they aren't versions.
type VersionError struct {
	Tags []string
}

func (e VersionError) Error() string {
	return fmt.Sprintf(
		"not a semantic version: %s",
		strings.Join(e.Tags, ", "),
	)
}

// Accepts a leading "v" and short forms like v1.2, which are read as v1.2.0.
func parseVersion(tag string) (bsemver.Version, error) {
	return bsemver.ParseTolerant(tag)
}

// Returns tags in the given order. The input is not modified.
//
// Sorting by semver fails with a VersionError if any tag is not a version.
func Sort(tags []string, order string) ([]string, error) {
	switch order {
	case "", OrderGiven:
		return slices.Clone(tags), nil
	case OrderSemver:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrder, order)
	}

	versions := map[string]bsemver.Version{}
	invalid := []string{}
	for _, tag := range tags {
		v, err := parseVersion(tag)
		if err != nil {
			invalid = append(invalid, tag)
			continue
		}

		versions[tag] = v
	}

	if len(invalid) > 0 {
		return nil, VersionError{Tags: invalid}
	}

	sorted := slices.Clone(tags)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return versions[a].Compare(versions[b])
	})
	return sorted, nil
}
