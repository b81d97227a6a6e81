package release

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCompare checks the comparator over representative version pairs.
func TestCompare(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		latest    string
		installed string
		want      Status
	}{
		{"absent", "1.2.3", "", StatusNotInstalled},
		{"absent_whitespace", "1.2.3", "   ", StatusNotInstalled},
		{"equal", "1.2.3", "1.2.3", StatusUpToDate},
		{"newer_patch", "1.2.3", "1.2.0", StatusUpdateAvailable},
		{"newer_major", "2.0.0", "1.9.9", StatusUpdateAvailable},
		{"locally_ahead", "1.2.3", "1.3.0", StatusUpToDate},
		{"numeric_not_lexical", "1.10.0", "1.9.0", StatusUpdateAvailable},
		{"shorter_is_older", "1.2.3.1", "1.2.3", StatusUpdateAvailable},
		{"longer_zero_tail_equal", "1.2.3.0", "1.2.3", StatusUpToDate},
		{"browser_style", "117.0.5938.157", "117.0.5938.62", StatusUpdateAvailable},
		{"tag_prefix", "M117.0.5938.157", "117.0.5938.157", StatusUpToDate},
		{"debian_revision_ignored", "1.2.3", "1.2.3-2", StatusUpToDate},
		{"epoch_ignored", "1.2.3", "1:1.2.3", StatusUpToDate},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, Compare(tc.latest, tc.installed))
		})
	}
}

// TestStatusString ensures every status renders a human-readable label.
func TestStatusString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "not installed", StatusNotInstalled.String())
	require.Equal(t, "up to date", StatusUpToDate.String())
	require.Equal(t, "update available", StatusUpdateAvailable.String())
	require.Equal(t, "unknown", Status(42).String())
}
