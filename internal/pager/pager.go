// Package pager walks a cursor-paginated endpoint to exhaustion.
package pager

import "fmt"

// Page is one page of a cursor-paginated collection. Next is the absolute
// URL of the following page, or empty when this is the last page.
type Page[T any] struct {
	Values []T
	Next   string
}

// FetchPage retrieves and decodes the page at url.
type FetchPage[T any] func(url string) (Page[T], error)

// FetchAll follows Next links starting from firstURL, concatenating Values
// across every page in the order they are returned. It issues at most one
// request at a time; a transport or decoding failure on any page aborts the
// walk and discards whatever has been accumulated so far.
func FetchAll[T any](firstURL string, fetch FetchPage[T]) ([]T, error) {
	page, err := fetch(firstURL)
	if err != nil {
		return nil, fmt.Errorf("fetching page %s: %w", firstURL, err)
	}

	all := make([]T, 0, len(page.Values))
	all = append(all, page.Values...)

	url := page.Next
	for url != "" {
		page, err = fetch(url)
		if err != nil {
			return nil, fmt.Errorf("fetching page %s: %w", url, err)
		}
		all = append(all, page.Values...)
		url = page.Next
	}

	return all, nil
}
