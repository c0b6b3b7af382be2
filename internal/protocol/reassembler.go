package protocol

import "bytes"

// Reassembler turns the raw chunks read from one connection into complete
// lines. An incomplete trailing fragment is kept until a later chunk
// supplies its newline; there is no cap on its length. A chunk without a
// newline, including one that exactly fills the read buffer, is always
// treated as more data to come.
type Reassembler struct {
	tail []byte
}

// Feed consumes chunk and returns the lines it completes, without their
// '\n'. Empty lines are returned as empty strings.
func (r *Reassembler) Feed(chunk []byte) []string {
	if bytes.IndexByte(chunk, '\n') < 0 {
		r.tail = append(r.tail, chunk...)
		return nil
	}

	parts := bytes.Split(chunk, []byte{'\n'})
	lines := make([]string, 0, len(parts)-1)

	lines = append(lines, string(r.tail)+string(parts[0]))
	for _, p := range parts[1 : len(parts)-1] {
		lines = append(lines, string(p))
	}

	// parts[len-1] is empty when chunk ended with '\n'.
	last := parts[len(parts)-1]
	r.tail = append(make([]byte, 0, len(last)), last...)
	return lines
}

// Pending returns the buffered incomplete fragment.
func (r *Reassembler) Pending() string {
	return string(r.tail)
}

// Reset discards any buffered fragment.
func (r *Reassembler) Reset() {
	r.tail = nil
}
