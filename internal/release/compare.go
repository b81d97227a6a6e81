package release

import (
	"strconv"
	"strings"
)

// Status is the outcome of comparing the latest available version against
// the locally installed one.
type Status int

const (
	// StatusNotInstalled means dpkg knows no installed version of the package.
	StatusNotInstalled Status = iota
	// StatusUpToDate means the installed version is at least the latest.
	StatusUpToDate
	// StatusUpdateAvailable means a newer version is published.
	StatusUpdateAvailable
)

// String renders the status for logs and messages.
func (s Status) String() string {
	switch s {
	case StatusNotInstalled:
		return "not installed"
	case StatusUpToDate:
		return "up to date"
	case StatusUpdateAvailable:
		return "update available"
	default:
		return "unknown"
	}
}

// Compare decides the update status for the given latest and installed
// versions. An empty installed version means the package is absent.
// Ties favor StatusUpToDate; a locally newer version also counts as up to
// date since there is nothing to fetch.
func Compare(latest, installed string) Status {
	if strings.TrimSpace(installed) == "" {
		return StatusNotInstalled
	}

	if compareVersions(latest, installed) > 0 {
		return StatusUpdateAvailable
	}

	return StatusUpToDate
}

// compareVersions compares two dotted version strings segment by segment.
// Returns -1, 0 or 1. Numeric segments compare numerically, anything else
// lexically. Missing segments count as zero.
func compareVersions(a, b string) int {
	as := strings.Split(normalizeVersion(a), ".")
	bs := strings.Split(normalizeVersion(b), ".")

	for i := 0; i < len(as) || i < len(bs); i++ {
		var av, bv string

		if i < len(as) {
			av = as[i]
		}

		if i < len(bs) {
			bv = bs[i]
		}

		if cmp := compareSegments(av, bv); cmp != 0 {
			return cmp
		}
	}

	return 0
}

// compareSegments compares a single version segment pair.
func compareSegments(a, b string) int {
	an, aErr := strconv.Atoi(a)
	bn, bErr := strconv.Atoi(b)

	if aErr == nil && bErr == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}

	// Empty segments count as zero against numbers.
	if a == "" && bErr == nil {
		return compareSegments("0", b)
	}

	if b == "" && aErr == nil {
		return compareSegments(a, "0")
	}

	return strings.Compare(a, b)
}

// normalizeVersion strips decorations dpkg and release tags add around the
// upstream version: a leading "v"/"M" prefix, an epoch prefix ("2:") and a
// Debian revision suffix ("-1").
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimLeft(v, "vM")

	if i := strings.IndexByte(v, ':'); i >= 0 {
		v = v[i+1:]
	}

	if i := strings.IndexByte(v, '-'); i >= 0 {
		v = v[:i]
	}

	return v
}
