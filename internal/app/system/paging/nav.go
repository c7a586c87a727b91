package paging

import (
	"net/url"
	"strconv"
)

// Nav carries what the pager and page-size selector need to build links.
// Filters holds the table's other query parameters so they survive paging.
type Nav struct {
	Path       string
	Size       int
	Sizes      []int
	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
	Filters    url.Values
}

// NavFor builds the Nav for a page rendered at path.
func NavFor[T any](path string, p Page[T], filters url.Values) Nav {
	return Nav{
		Path:       path,
		Size:       p.Size,
		Sizes:      Sizes,
		HasPrev:    p.HasPrev,
		HasNext:    p.HasNext,
		PrevCursor: p.PrevCursor,
		NextCursor: p.NextCursor,
		Filters:    filters,
	}
}

// PrevURL links to the page before the current one.
func (n Nav) PrevURL() string { return n.link(n.Size, "before", n.PrevCursor) }

// NextURL links to the page after the current one.
func (n Nav) NextURL() string { return n.link(n.Size, "after", n.NextCursor) }

// SizeURL restarts the table from the first page at size.
func (n Nav) SizeURL(size int) string { return n.link(size, "", "") }

func (n Nav) link(size int, key, cursor string) string {
	v := url.Values{}
	for k, vals := range n.Filters {
		for _, s := range vals {
			if s != "" {
				v.Add(k, s)
			}
		}
	}
	if size != DefaultSize {
		v.Set("size", strconv.Itoa(size))
	}
	if key != "" && cursor != "" {
		v.Set(key, cursor)
	}
	if len(v) == 0 {
		return n.Path
	}
	return n.Path + "?" + v.Encode()
}
