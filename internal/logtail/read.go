package logtail

import (
	"errors"
	"fmt"
	"io"

	"github.com/five82/karaflog/internal/logparse"
)

// ReadAll parses everything r yields, including a final line without a
// terminator, and returns the records tagged with id.
func ReadAll(r io.Reader, parser logparse.Parser, id logparse.SourceID) ([]logparse.Record, error) {
	var (
		split   lineSplitter
		records []logparse.Record
		buf     = make([]byte, readBufferSize)
	)
	feed := func(line string) {
		if rec, ok := parser.Feed(line); ok {
			rec.Source = id
			records = append(records, rec)
		}
	}

	for {
		n, err := r.Read(buf)
		for _, line := range split.push(buf[:n]) {
			feed(line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return records, fmt.Errorf("read log: %w", err)
		}
	}
	if line, ok := split.finish(); ok {
		feed(line)
	}
	if rec, ok := parser.Flush(); ok {
		rec.Source = id
		records = append(records, rec)
	}
	return records, nil
}
