// Package util provides parsing helpers for configuration and scenario strings.
package util

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/eagleglass/airsim/pkg/core"
)

// ErrInvalidResourceList is returned for entries that are not "type:count".
var ErrInvalidResourceList = errors.New("invalid resource list")

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// ParseResourceList parses a comma separated list of type:count pairs.
// Input format: fuel:30, steel:20
// An empty string yields an empty list. Counts must not be negative.
func ParseResourceList(s string) ([]core.ResourceCount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var out []core.ResourceCount
	for _, entry := range strings.Split(s, ",") {
		name, count, ok := strings.Cut(strings.TrimSpace(entry), ":")
		name = TrimQuotes(strings.TrimSpace(name))
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidResourceList, entry)
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidResourceList, entry)
		}
		out = append(out, core.ResourceCount{Type: core.ResourceType(name), Count: n})
	}
	return out, nil
}

// FormatResourceList is the inverse of ParseResourceList.
func FormatResourceList(list []core.ResourceCount) string {
	var b strings.Builder
	for i, rc := range list {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(rc.Type))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(rc.Count))
	}
	return b.String()
}
