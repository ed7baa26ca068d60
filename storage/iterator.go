package storage

import (
	"context"

	"github.com/kbukum/cloudstore/provider"
)

// PageFunc fetches the page that token points at. The first page has an
// empty token.
type PageFunc func(ctx context.Context, token string) (Page, error)

// ObjectIterator pulls filtered keys from a paged listing. It holds one page
// at a time and fetches the next only after the current one is drained.
//
// An ObjectIterator is single-use and not safe for concurrent use. After a
// page fetch fails, every call to Next returns that error.
type ObjectIterator struct {
	fetch  PageFunc
	filter ListFilter

	page    []string
	pos     int
	token   string
	started bool
	done    bool
	err     error
	pages   int
}

var _ provider.Iterator[string] = (*ObjectIterator)(nil)

// NewObjectIterator returns an iterator over the pages produced by fetch.
func NewObjectIterator(fetch PageFunc, filter ListFilter) *ObjectIterator {
	return &ObjectIterator{fetch: fetch, filter: filter}
}

// Next returns the next key that passes the filter. It returns ok=false once
// the provider reports no more pages.
func (it *ObjectIterator) Next(ctx context.Context) (string, bool, error) {
	for {
		if it.done {
			return "", false, nil
		}
		if it.err != nil {
			return "", false, it.err
		}

		for it.pos < len(it.page) {
			key := it.page[it.pos]
			it.pos++
			if it.filter.Match(key) {
				return key, true, nil
			}
		}

		if it.started && it.token == "" {
			it.done = true
			it.page = nil
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		page, err := it.fetch(ctx, it.token)
		if err != nil {
			it.err = err
			continue
		}
		it.started = true
		it.pages++
		it.page, it.pos, it.token = page.Keys, 0, page.NextToken
	}
}

// Pages returns the number of pages fetched so far.
func (it *ObjectIterator) Pages() int { return it.pages }

// Close stops the iteration. Later calls to Next report exhaustion.
func (it *ObjectIterator) Close() error {
	it.done = true
	it.page = nil
	return nil
}

// Collect drains the iterator into a slice. Keys read before a failure are
// returned with the error.
func Collect(ctx context.Context, it *ObjectIterator) ([]string, error) {
	return provider.Drain[string](ctx, it)
}
