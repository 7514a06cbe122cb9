// Package clip copies text to the terminal clipboard through the OSC52
// escape sequence, which most modern terminals (and tmux/screen passthrough
// setups) honor even over SSH.
package clip

import (
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
)

// MaxInput caps how much input is read; most terminals reject OSC52
// payloads beyond a few megabytes anyway.
const MaxInput = 4 << 20

const (
	seqStart = "\x1b]52;c;"
	seqEnd   = "\a"
)

// Sequence wraps data in an OSC52 set-clipboard escape sequence. The BEL
// terminator can be omitted for the rare terminal that chokes on it.
func Sequence(data []byte, terminate bool) []byte {
	encoded := base64.StdEncoding.EncodeToString(data)
	buf := make([]byte, 0, len(seqStart)+len(encoded)+len(seqEnd))
	buf = append(buf, seqStart...)
	buf = append(buf, encoded...)
	if terminate {
		buf = append(buf, seqEnd...)
	}
	return buf
}

// Copy reads everything from r, up to MaxInput, and writes the clipboard
// escape for it to w.
func Copy(w io.Writer, r io.Reader, terminate bool) error {
	data, err := io.ReadAll(io.LimitReader(r, MaxInput))
	if err != nil {
		return errors.Wrap(err, "read input")
	}
	if _, err := w.Write(Sequence(data, terminate)); err != nil {
		return errors.Wrap(err, "write escape sequence")
	}
	return nil
}
