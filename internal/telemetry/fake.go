package telemetry

import "context"

// FakeFetcher returns canned snapshots for tests.
type FakeFetcher struct {
	// Snapshot is returned by every Fetch call unless Err is set.
	Snapshot Snapshot
	// Err, if set, is returned by Fetch.
	Err error
	// Calls counts Fetch invocations.
	Calls int
}

// Fetch returns the canned snapshot or error.
func (f *FakeFetcher) Fetch(ctx context.Context) (Snapshot, error) {
	f.Calls++
	if f.Err != nil {
		return EmptySnapshot(), f.Err
	}
	return f.Snapshot, nil
}
