package store

import (
	"context"

	"github.com/roach88/docmigrate/internal/doc"
)

// Cursor iterates a collection forward-only.
//
//	cur, err := st.Cursor(ctx, "providers", 1000)
//	defer cur.Close()
//	for cur.Next(ctx) {
//	    rec, err := cur.Record()
//	    ...
//	}
//	if err := cur.Err(); err != nil { ... }
type Cursor interface {
	// Next advances to the next record, fetching a new page when needed.
	// It returns false when the collection is exhausted or a fetch failed.
	Next(ctx context.Context) bool

	// Record decodes the current record. A decode error concerns this
	// record only; iteration may continue.
	Record() (doc.Record, error)

	// Err returns the fetch error that stopped iteration, if any.
	Err() error

	Close() error
}

// rawRecord is a stored document before decoding.
type rawRecord struct {
	ID   string
	Data []byte
}

// pageFunc fetches up to limit records with id greater than afterID.
type pageFunc func(ctx context.Context, afterID string, limit int) ([]rawRecord, error)

// pagedCursor implements Cursor with keyset pagination on the record id.
// Each page is read completely before it is handed out, so no query stays
// open while the caller writes.
type pagedCursor struct {
	fetch    pageFunc
	pageSize int
	page     []rawRecord
	pos      int
	lastID   string
	done     bool
	err      error
}

func newPagedCursor(fetch pageFunc, pageSize int) *pagedCursor {
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &pagedCursor{fetch: fetch, pageSize: pageSize, pos: -1}
}

func (c *pagedCursor) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}
	if c.pos+1 < len(c.page) {
		c.pos++
		c.lastID = c.page[c.pos].ID
		return true
	}
	if c.done {
		return false
	}
	page, err := c.fetch(ctx, c.lastID, c.pageSize)
	if err != nil {
		c.err = err
		return false
	}
	if len(page) < c.pageSize {
		c.done = true
	}
	if len(page) == 0 {
		return false
	}
	c.page = page
	c.pos = 0
	c.lastID = page[0].ID
	return true
}

func (c *pagedCursor) Record() (doc.Record, error) {
	if c.pos < 0 || c.pos >= len(c.page) {
		return doc.Record{}, nil
	}
	raw := c.page[c.pos]
	return doc.DecodeRecord(raw.ID, raw.Data)
}

func (c *pagedCursor) Err() error {
	return c.err
}

func (c *pagedCursor) Close() error {
	c.page = nil
	c.done = true
	return nil
}
