package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/initr/internal/app"
	"github.com/vk/initr/internal/initr"
)

// AssertFetchedBefore checks that every URL in first finished loading before
// any URL in then started. It is how grouped load plans are verified.
func AssertFetchedBefore(t *testing.T, f *FakeFetcher, first, then []string) {
	t.Helper()

	for _, a := range first {
		ra, ok := f.Record(a)
		require.True(t, ok, "expected %s to have been fetched", a)
		for _, b := range then {
			rb, ok := f.Record(b)
			require.True(t, ok, "expected %s to have been fetched", b)
			require.False(t, rb.Start.Before(ra.End),
				"%s started at %s before %s finished at %s", b, rb.Start, a, ra.End)
		}
	}
}

// AssertOverlapping checks that the fetches of a and b ran at the same time.
func AssertOverlapping(t *testing.T, f *FakeFetcher, a, b string) {
	t.Helper()

	ra, ok := f.Record(a)
	require.True(t, ok, "expected %s to have been fetched", a)
	rb, ok := f.Record(b)
	require.True(t, ok, "expected %s to have been fetched", b)
	require.True(t, ra.Start.Before(rb.End) && rb.Start.Before(ra.End),
		"fetches of %s and %s did not overlap", a, b)
}

// AssertOutcome checks the status of the first outcome recorded for handle.
func AssertOutcome(t *testing.T, report *app.Report, handle string, want initr.Status) {
	t.Helper()

	require.NotNil(t, report, "expected a report")
	for _, o := range report.Outcomes {
		if o.Handle == handle {
			require.Equal(t, want, o.Status, "unexpected status for %s (err: %v)", handle, o.Err)
			return
		}
	}
	require.Failf(t, "missing outcome", "no outcome recorded for %s", handle)
}
