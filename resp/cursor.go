package resp

// Cursor is the shared byte cursor parsers advance over. A single Cursor
// is reused across many Step calls for the same in-progress frame: bytes
// a parser has successfully consumed stay consumed even if the overall
// frame is still incomplete, so the next call resumes exactly where the
// previous one left off once more bytes are fed in via Feed.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns an empty, unpositioned cursor.
func NewCursor() *Cursor {
	return &Cursor{}
}

// Feed points the cursor at buf. The caller is responsible for keeping
// pos valid: buf must share the same unconsumed tail the cursor was
// already positioned over, with any newly available bytes appended after
// it (this is what a reader loop does by appending freshly-read bytes to
// its buffer and re-feeding the same backing slice, grown).
func (c *Cursor) Feed(buf []byte) {
	c.buf = buf
}

// Pos is the number of bytes already consumed from the fed buffer.
func (c *Cursor) Pos() int { return c.pos }

// Len is the number of unconsumed bytes available to parsers.
func (c *Cursor) Len() int { return len(c.buf) - c.pos }

// Remaining is a view of the unconsumed bytes, without consuming them.
func (c *Cursor) Remaining() []byte { return c.buf[c.pos:] }

// Next consumes and returns the next n bytes. The caller must have
// already checked Len() >= n.
func (c *Cursor) Next(n int) []byte {
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b
}

// Realign tells the cursor that the caller physically slid the unconsumed
// tail of its backing array to offset 0 (typically because a transport
// read buffer compacted itself before the next socket read). The caller
// passes the re-based slice; pos is rewound to match.
func (c *Cursor) Realign(buf []byte) {
	c.buf = buf
	c.pos = 0
}
