// Package pagination implements the cursor pagination shared by every
// list endpoint. The cursor encodes the (creation timestamp, id) sort
// key of the last item on a page, so concurrent inserts can never cause
// an item to be skipped or duplicated across pages the way offsets do.
package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrInvalidCursor is returned when a cursor token cannot be decoded.
var ErrInvalidCursor = errors.New("invalid pagination cursor")

// Options holds the page-size configuration shared by all resources.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Clamp resolves a requested page size against the configured bounds.
// Oversized requests are clamped, never rejected.
func (o Options) Clamp(requested int) int {
	if requested <= 0 {
		return o.DefaultPageSize
	}
	if requested > o.MaxPageSize {
		return o.MaxPageSize
	}
	return requested
}

// Cursor is the decoded sort key of the last item of the previous page.
type Cursor struct {
	CreatedAt time.Time
	ID        uint
}

// Encode serializes the cursor into an opaque URL-safe token.
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("%d:%d", c.CreatedAt.UnixNano(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Decode parses a token produced by Encode.
func Decode(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	var nanos int64
	var id uint
	if _, err := fmt.Sscanf(string(raw), "%d:%d", &nanos, &id); err != nil || id == 0 {
		return Cursor{}, ErrInvalidCursor
	}
	return Cursor{CreatedAt: time.Unix(0, nanos), ID: id}, nil
}

// Page is a resolved pagination request: a clamped limit plus an
// optional cursor pointing just past the previous page.
type Page struct {
	Limit int
	After *Cursor
}

// Scope returns a GORM scope applying the deterministic ordering
// (newest first, ties broken by id descending), the cursor predicate,
// and the limit. The column names are qualified with table so the scope
// stays valid when the query joins other tables.
func (p Page) Scope(table string) func(*gorm.DB) *gorm.DB {
	createdAt := table + ".created_at"
	id := table + ".id"
	return func(db *gorm.DB) *gorm.DB {
		db = db.Order(createdAt + " DESC, " + id + " DESC")
		if p.After != nil {
			db = db.Where(
				createdAt+" < ? OR ("+createdAt+" = ? AND "+id+" < ?)",
				p.After.CreatedAt, p.After.CreatedAt, p.After.ID,
			)
		}
		if p.Limit > 0 {
			db = db.Limit(p.Limit)
		}
		return db
	}
}

// Keyed is implemented by models that can be cursor-paginated.
type Keyed interface {
	PageKey() (time.Time, uint)
}

// Next derives the next-page token from a fetched page. A page shorter
// than the limit is the last one and yields no token.
func Next[T Keyed](items []T, limit int) string {
	if limit <= 0 || len(items) < limit {
		return ""
	}
	createdAt, id := items[len(items)-1].PageKey()
	return Cursor{CreatedAt: createdAt, ID: id}.Encode()
}
