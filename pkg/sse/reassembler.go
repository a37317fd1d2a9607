package sse

import "bytes"

// delimiter terminates a frame. A trailing span without it stays buffered.
var delimiter = []byte("\n\n")

// Reassembler splits an arbitrarily-fragmented byte stream into complete
// frames. Chunks are appended to an internal buffer; complete frames are
// extracted in order and the unterminated remainder is retained for the
// next push.
//
// Framing is byte-oriented, which makes it safe under any chunk boundary:
// a delimiter split across two chunks is found once the second half
// arrives, and a multi-byte UTF-8 rune split across chunks is preserved
// intact in the buffer (continuation bytes have the high bit set, so they
// can never alias the delimiter).
//
// A Reassembler is owned by a single read loop and is not safe for
// concurrent use.
type Reassembler struct {
	buf []byte

	// scanned is the length of the buffer prefix already known to contain
	// no delimiter, so each push resumes scanning where the last one
	// stopped instead of rescanning the whole buffer.
	scanned int
}

// Push appends a chunk and returns every complete frame it unlocked, in
// stream order, with the terminating delimiters removed. It returns nil
// when no frame completed.
func (r *Reassembler) Push(chunk []byte) []string {
	r.buf = append(r.buf, chunk...)

	var frames []string
	for {
		// Back up one byte so a delimiter straddling the previous push
		// boundary is not missed.
		start := r.scanned
		if start > 0 {
			start--
		}

		i := bytes.Index(r.buf[start:], delimiter)
		if i < 0 {
			r.scanned = len(r.buf)
			break
		}

		end := start + i
		frames = append(frames, string(r.buf[:end]))
		r.buf = r.buf[end+len(delimiter):]
		r.scanned = 0
	}

	return frames
}

// Pending returns the number of buffered bytes not yet resolved into a
// complete frame. When the stream ends, any pending bytes are an
// unterminated trailing span and are deliberately dropped, not flushed.
func (r *Reassembler) Pending() int {
	return len(r.buf)
}
