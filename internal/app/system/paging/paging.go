// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultSize is the number of rows shown when no size is selected.
const DefaultSize = 25

// Sizes are the choices offered by the page-size selector on every table.
var Sizes = []int{10, 25, 50, 100}

// ParseSize reads the "size" query parameter. Values outside Sizes fall
// back to DefaultSize.
func ParseSize(r *http.Request) int {
	n, err := strconv.Atoi(query.Get(r, "size"))
	if err != nil {
		return DefaultSize
	}
	for _, s := range Sizes {
		if n == s {
			return n
		}
	}
	return DefaultSize
}

// Query describes one keyset page request.
type Query struct {
	Size   int
	Before string
	After  string
}

// FromRequest builds a Query from the size/before/after query parameters.
func FromRequest(r *http.Request) Query {
	return Query{
		Size:   ParseSize(r),
		Before: query.Get(r, "before"),
		After:  query.Get(r, "after"),
	}
}

func (q Query) size() int {
	if q.Size <= 0 {
		return DefaultSize
	}
	return q.Size
}

// backward reports whether the page is fetched in reverse order.
func (q Query) backward() bool { return q.Before != "" }

func (q Query) cursor() (wafflemongo.Cursor, bool) {
	if q.backward() {
		return wafflemongo.DecodeCursor(q.Before)
	}
	if q.After != "" {
		return wafflemongo.DecodeCursor(q.After)
	}
	return wafflemongo.Cursor{}, false
}

// Filter adds the keyset window on sortField to base. base may be nil.
func (q Query) Filter(base bson.M, sortField string) bson.M {
	out := bson.M{}
	for k, v := range base {
		out[k] = v
	}
	c, ok := q.cursor()
	if !ok {
		return out
	}
	dir := "gt"
	if q.backward() {
		dir = "lt"
	}
	win := wafflemongo.KeysetWindow(sortField, dir, c.CI, c.ID)
	if len(out) == 0 {
		return win
	}
	return bson.M{"$and": []bson.M{out, win}}
}

// FindOptions sorts by sortField then _id and fetches one look-ahead row.
func (q Query) FindOptions(sortField string) *options.FindOptions {
	order := 1
	if q.backward() {
		order = -1
	}
	return options.Find().
		SetSort(bson.D{{Key: sortField, Value: order}, {Key: "_id", Value: order}}).
		SetLimit(int64(q.size() + 1))
}

// Page is a trimmed window of rows plus navigation state.
type Page[T any] struct {
	Rows       []T
	Size       int
	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
}

// Finish turns the fetched rows (size+1 at most, in query order) into a
// display page in ascending order.
func Finish[T any](rows []T, q Query, keyFn func(T) string, idFn func(T) primitive.ObjectID) Page[T] {
	if q.backward() {
		Reverse(rows)
	}
	res := trim(&rows, q.Before, q.After, q.size())
	prev, next := BuildCursors(rows, keyFn, idFn)
	return Page[T]{
		Rows:       rows,
		Size:       q.size(),
		HasPrev:    res.HasPrev,
		HasNext:    res.HasNext,
		PrevCursor: prev,
		NextCursor: next,
	}
}

// Result holds the output of trim for keyset pagination.
type Result struct {
	HasPrev bool
	HasNext bool
}

// trim drops the look-ahead row. Going backwards the extra row is the
// oldest one (first after reversing); otherwise it is the last.
func trim[T any](rows *[]T, before, after string, pageSize int) Result {
	orig := len(*rows)
	var hasPrev, hasNext bool

	if before != "" {
		if orig > pageSize {
			*rows = (*rows)[1:]
			hasPrev = true
		}
		hasNext = true
	} else {
		if orig > pageSize {
			*rows = (*rows)[:pageSize]
			hasNext = true
		}
		hasPrev = after != ""
	}

	return Result{HasPrev: hasPrev, HasNext: hasNext}
}

// Reverse reverses a slice in place.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// BuildCursors creates prev/next cursor strings from the first and last elements.
func BuildCursors[T any](rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) (prev, next string) {
	if len(rows) == 0 {
		return "", ""
	}
	first := rows[0]
	last := rows[len(rows)-1]
	prev = wafflemongo.EncodeCursor(keyFn(first), idFn(first))
	next = wafflemongo.EncodeCursor(keyFn(last), idFn(last))
	return prev, next
}
