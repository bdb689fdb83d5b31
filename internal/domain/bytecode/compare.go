package bytecode

import "strings"

// Compare checks two normalized blobs for exact equality. On mismatch the
// returned offset is the index of the first differing byte; when one blob is
// a strict prefix of the other the offset is the shorter blob's length.
func Compare(deployed, compiled string) (bool, int) {
	if deployed == compiled {
		return true, 0
	}
	n := len(deployed)
	if len(compiled) < n {
		n = len(compiled)
	}
	for i := 0; i < n; i++ {
		if deployed[i] != compiled[i] {
			return false, i / 2
		}
	}
	return false, n / 2
}

// AlignLeadingPrefix handles factory and CREATE2 deployments that prepend
// data to the creation blob: it locates the compiled code's leading bytes
// inside the deployed blob and trims everything before them. Returns the
// trimmed blob and the prefix size in bytes; ok is false when no interior
// occurrence exists.
func AlignLeadingPrefix(deployed, compiled string) (string, int, bool) {
	if len(compiled) == 0 || len(deployed) <= len(compiled) {
		return deployed, 0, false
	}
	probe := compiled
	if len(probe) > 40 {
		probe = probe[:40]
	}
	idx := strings.Index(deployed, probe)
	if idx <= 0 || idx%2 != 0 {
		return deployed, 0, false
	}
	return deployed[idx:], idx / 2, true
}

// MatchImmutables reports whether two equal-length blobs differ only at
// immutable variable slots: every diff region must be all zero on the
// compiled side, since immutables are zero in compiled output and filled in
// at deploy time. Returns the number of such regions.
func MatchImmutables(deployed, compiled string) (int, bool) {
	if len(deployed) != len(compiled) || deployed == compiled {
		return 0, false
	}
	regions := 0
	for i := 0; i < len(deployed); {
		if deployed[i] == compiled[i] {
			i++
			continue
		}
		start := i
		for i < len(deployed) && deployed[i] != compiled[i] {
			i++
		}
		for j := start; j < i; j++ {
			if compiled[j] != '0' {
				return 0, false
			}
		}
		regions++
	}
	return regions, regions > 0
}

// DiffWindow returns the hex surrounding a diff offset for diagnostics.
func DiffWindow(hex string, charIdx int) string {
	start := charIdx - 20
	if start < 0 {
		start = 0
	}
	end := charIdx + 20
	if end > len(hex) {
		end = len(hex)
	}
	return hex[start:end]
}
