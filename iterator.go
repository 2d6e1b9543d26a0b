package nova

import (
	"context"
)

// EventIterator lazily iterates over all events matched by a search,
// fetching bounded pages under the hood. Page boundaries are invisible
// to the consumer: events arrive in service order with no duplicates or
// gaps across pages.
//
// Usage follows the bufio.Scanner pattern:
//
//	it := client.Search("source=webserver").IterEvents()
//	for it.Next(ctx) {
//	    handle(it.Event())
//	}
//	if err := it.Err(); err != nil {
//	    // A page fetch failed mid-iteration; the sequence is not
//	    // silently truncated.
//	}
//
// An iterator is single-use: once exhausted it stays exhausted. Call
// IterEvents again for a fresh cursor. Abandoning an iterator is free;
// it issues no further requests and holds no remote resources.
//
// The underlying result set is not snapshotted. The service may receive
// new events between page fetches, so an iteration observes the store
// as it changes. That is the intended contract for an append-only event
// store under active ingestion.
//
// An EventIterator is not safe for concurrent use; page fetches are
// strictly sequential, which keeps the cursor correct.
type EventIterator struct {
	search   EventSearch
	pageSize int

	offset int
	buf    []Event
	pos    int
	cur    Event
	done   bool
	err    error
}

// Next advances the iterator to the next event. It returns false when
// the result set is exhausted or a page fetch failed; check Err to tell
// the two apart. Calling Next after it has returned false keeps
// returning false.
func (it *EventIterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}

	for {
		if it.pos < len(it.buf) {
			it.cur = it.buf[it.pos]
			it.pos++
			return true
		}

		if it.done {
			it.cur = nil
			return false
		}

		page, err := it.search.fetchPage(ctx, it.offset, it.pageSize)
		if err != nil {
			it.err = err
			it.done = true
			it.buf = nil
			it.cur = nil
			return false
		}

		it.buf = page.Records
		it.pos = 0
		it.offset += it.pageSize

		// A short or empty page signals the end of the result set.
		if len(page.Records) < it.pageSize {
			it.done = true
		}
		if len(page.Records) == 0 {
			it.cur = nil
			return false
		}
	}
}

// Event returns the event produced by the last successful call to Next.
// It returns nil before the first call to Next or after exhaustion.
func (it *EventIterator) Event() Event {
	return it.cur
}

// Err returns the error that stopped iteration, or nil if the iterator
// ran to exhaustion (or is still running).
func (it *EventIterator) Err() error {
	return it.err
}

// All drains the iterator and returns the remaining events. It is a
// convenience for small result sets; prefer Next for large ones.
func (it *EventIterator) All(ctx context.Context) ([]Event, error) {
	var events []Event
	for it.Next(ctx) {
		events = append(events, it.Event())
	}
	return events, it.Err()
}
