package provider

import "context"

// FetchPage retrieves one page of items. It receives the continuation
// token from the previous page (empty for the first call) and returns
// the page's items, the next token, and whether more pages remain.
type FetchPage[T any] func(ctx context.Context, token string) (items []T, next string, more bool, err error)

// Iterator is a forward-only, lazily-fetching view over a paginated
// vendor listing. Pages are requested only as the consumer advances, so
// abandoning the iterator early issues no further network calls. It is
// not safe for concurrent use; each call to a provider listing method
// returns a fresh iterator.
type Iterator[T any] struct {
	ctx   context.Context
	fetch FetchPage[T]

	buf     []T
	pos     int
	token   string
	started bool
	more    bool
	err     error
}

// NewIterator creates an iterator over the pages produced by fetch.
func NewIterator[T any](ctx context.Context, fetch FetchPage[T]) *Iterator[T] {
	return &Iterator[T]{ctx: ctx, fetch: fetch}
}

// Next advances to the next item. It returns false when the listing is
// exhausted, the context is cancelled, or a fetch failed; check Err
// afterwards to distinguish exhaustion from failure.
func (it *Iterator[T]) Next() (T, bool) {
	var zero T
	if it.err != nil {
		return zero, false
	}

	for it.pos >= len(it.buf) {
		if it.started && !it.more {
			return zero, false
		}
		if err := it.ctx.Err(); err != nil {
			it.err = err
			return zero, false
		}

		items, next, more, err := it.fetch(it.ctx, it.token)
		if err != nil {
			it.err = err
			return zero, false
		}
		it.started = true
		it.buf = items
		it.pos = 0
		it.token = next
		it.more = more
	}

	item := it.buf[it.pos]
	it.pos++
	return item, true
}

// Err returns the error that stopped iteration, if any.
func (it *Iterator[T]) Err() error {
	return it.err
}

// Collect drains the iterator into a slice. It is primarily a
// convenience for callers that know the listing is small, such as
// bucket enumeration.
func (it *Iterator[T]) Collect() ([]T, error) {
	var out []T
	for {
		item, ok := it.Next()
		if !ok {
			return out, it.Err()
		}
		out = append(out, item)
	}
}
