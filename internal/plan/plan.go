// Package plan partitions an ordered list of script identifiers into
// sequential load groups.
//
// An identifier prefixed with WaitMarker closes the group it belongs to: every
// script up to and including the marked one must finish loading before the
// next group starts. Scripts inside a group load concurrently. The marker is
// purely positional; no dependency graph is built or validated.
package plan

import "strings"

// WaitMarker is the reserved prefix that turns an identifier into a
// synchronization point.
const WaitMarker = '!'

// IsWait reports whether id carries the wait marker.
func IsWait(id string) bool {
	return len(id) > 0 && id[0] == WaitMarker
}

// Strip removes a single leading wait marker, if present.
func Strip(id string) string {
	if IsWait(id) {
		return id[1:]
	}
	return id
}

// StripAll returns ids with every wait marker removed, preserving order.
func StripAll(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = Strip(id)
	}
	return out
}

// Plan scans ids left to right and returns the sealed groups. The second
// return value is false when no identifier carried a marker, in which case
// groups is nil and the caller may load every script at once.
//
// The group containing a marked identifier ends with it, so no group is ever
// empty. A trailing group that was never closed by a marker is still
// returned.
func Plan(ids []string) (groups [][]string, grouped bool) {
	var current []string
	for _, id := range ids {
		wait := IsWait(id)
		current = append(current, Strip(id))
		if wait {
			grouped = true
			groups = append(groups, current)
			current = nil
		}
	}
	if !grouped {
		return nil, false
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups, true
}

// Describe renders groups in a compact, stable form such as
// "[a.js] -> [b.js c.js]".
func Describe(groups [][]string) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = "[" + strings.Join(g, " ") + "]"
	}
	return strings.Join(parts, " -> ")
}
