package llm

import (
	"bufio"
	"io"
	"strings"
)

// sseDoneSentinel terminates a server-sent-events stream.
const sseDoneSentinel = "[DONE]"

// sseDecoder extracts "data: " payloads from a server-sent-events byte
// stream. Lines are accumulated across reads before the prefix check, so a
// "data: " prefix split over two chunks is reassembled correctly. Non-data
// lines (comments, blank keep-alives) are skipped.
type sseDecoder struct {
	reader *bufio.Reader
}

func newSSEDecoder(r io.Reader) *sseDecoder {
	return &sseDecoder{reader: bufio.NewReader(r)}
}

// Next returns the payload of the next data line. io.EOF signals a cleanly
// exhausted stream.
func (d *sseDecoder) Next() (string, error) {
	for {
		line, err := d.reader.ReadString('\n')

		// A final line without a trailing newline still carries a payload.
		trimmed := strings.TrimSpace(line)
		if payload, found := strings.CutPrefix(trimmed, "data:"); found {
			return strings.TrimSpace(payload), nil
		}

		if err != nil {
			return "", err
		}
	}
}
