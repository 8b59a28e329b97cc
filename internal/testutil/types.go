package testutil

import "time"

// FetchRecord holds the start and end times of a single fake script fetch.
type FetchRecord struct {
	URL   string
	Start time.Time
	End   time.Time
	Err   error
}
