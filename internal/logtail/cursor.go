package logtail

import (
	"bytes"
	"errors"
	"io"
)

// fingerprintSize bounds the consumed bytes kept to recognise a rewrite.
const fingerprintSize = 64

// FileID identifies a file independently of its path. The zero value means
// the platform does not expose an identity.
type FileID struct {
	Dev uint64
	Ino uint64
}

// Known reports whether the identity carries information.
func (id FileID) Known() bool { return id != FileID{} }

// Cursor tracks how far a file has been consumed. Offset only moves forward
// except when rotation is detected.
type Cursor struct {
	Path   string
	Offset int64
	ID     FileID

	// head holds the first consumed bytes of the file, tail the bytes
	// right before Offset.
	head []byte
	tail []byte
}

// Rotated reports whether a file observed with size and id no longer
// continues the bytes the cursor has consumed: it shrank below the offset or
// it is a different file now living at the same path.
func (c Cursor) Rotated(size int64, id FileID) bool {
	if size < c.Offset {
		return true
	}
	return c.ID.Known() && id.Known() && c.ID != id
}

// Rewritten reports whether the consumed bytes kept by the cursor differ
// from what r now holds at the same positions. It catches a file truncated
// and written past the old offset between two checks, which size and
// identity alone do not reveal.
func (c Cursor) Rewritten(r io.ReaderAt) (bool, error) {
	if c.Offset == 0 {
		return false, nil
	}
	if changed, err := differs(r, 0, c.head); changed || err != nil {
		return changed, err
	}
	return differs(r, c.Offset-int64(len(c.tail)), c.tail)
}

// advance moves the cursor past p, which was read at Offset.
func (c *Cursor) advance(p []byte) {
	if n := min(fingerprintSize-len(c.head), len(p)); n > 0 {
		c.head = append(c.head, p[:n]...)
	}
	if len(p) >= fingerprintSize {
		c.tail = append(c.tail[:0], p[len(p)-fingerprintSize:]...)
	} else {
		c.tail = append(c.tail, p...)
		if extra := len(c.tail) - fingerprintSize; extra > 0 {
			c.tail = append(c.tail[:0], c.tail[extra:]...)
		}
	}
	c.Offset += int64(len(p))
}

// rewind resets the cursor for a new file at the same path.
func (c *Cursor) rewind(id FileID) {
	c.Offset = 0
	c.ID = id
	c.head = c.head[:0]
	c.tail = c.tail[:0]
}

func differs(r io.ReaderAt, off int64, want []byte) (bool, error) {
	if len(want) == 0 {
		return false, nil
	}
	got := make([]byte, len(want))
	n, err := r.ReadAt(got, off)
	if n < len(got) {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		return false, err
	}
	return !bytes.Equal(got, want), nil
}
