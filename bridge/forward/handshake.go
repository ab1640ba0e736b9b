package forward

import "io"

// ReadExact reads exactly len(buf) bytes from r, or returns an error if
// the stream ends early: io.EOF if no byte was read, io.ErrUnexpectedEOF
// if it ended partway.
func ReadExact(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}
