package net

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// LineCodec converts console lines between the client's charset and UTF-8.
type LineCodec struct {
	name string
	enc  encoding.Encoding
}

// NewLineCodec looks charset up by its WHATWG name ("utf-8", "big5",
// "windows-1252", ...).
func NewLineCodec(charset string) (*LineCodec, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("client charset %q: %w", charset, err)
	}
	name, _ := htmlindex.Name(enc)
	return &LineCodec{name: name, enc: enc}, nil
}

func (c *LineCodec) Name() string { return c.name }

// Decode turns one raw line into UTF-8. Invalid sequences become U+FFFD.
func (c *LineCodec) Decode(raw []byte) (string, error) {
	out, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode line: %w", err)
	}
	return string(out), nil
}

// Encode turns UTF-8 text into the client charset. Runes the charset cannot
// represent are replaced.
func (c *LineCodec) Encode(s string) ([]byte, error) {
	out, err := encoding.ReplaceUnsupported(c.enc.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode line: %w", err)
	}
	return out, nil
}

// NewLineScanner splits r into lines of at most maxLen bytes. A longer line
// stops the scanner with bufio.ErrTooLong.
func NewLineScanner(r io.Reader, maxLen int) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 256), maxLen)
	sc.Split(scanLines)
	return sc
}

// scanLines is bufio.ScanLines without the final-line special case for a
// dangling \r, and with \r stripped wherever it ends the line.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, bytes.TrimSuffix(data[:i], []byte{'\r'}), nil
	}
	if atEOF {
		return len(data), bytes.TrimSuffix(data, []byte{'\r'}), nil
	}
	return 0, nil, nil
}

// WriteLine writes data followed by a newline.
func WriteLine(w io.Writer, data []byte) error {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, data...)
	buf = append(buf, '\n')
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}
