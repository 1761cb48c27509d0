// Package logtail follows growing log files and turns appended bytes into
// parsed records.
//
// # Overview
//
// A Watcher owns one file. It keeps a Cursor (path, byte offset, file
// identity), reads only what was appended since the previous check, splits
// the bytes into lines and feeds them to its own logparse.Parser. Results
// leave the watcher as Events on a channel; nothing else touches the cursor
// or the parser.
//
// # Checks
//
// A check runs when the file's directory reports a change (fsnotify) and on
// every poll tick. Notifications only shorten latency: polling alone is
// enough, and is what happens when the directory cannot be watched.
//
//	stat → open → rotated? → read [offset, size) → split lines → parse → emit
//
// A trailing fragment without a newline is held until the rest of the line
// arrives. When no new line shows up for FlushDelay the parser's open record
// is published as an EventPending without being closed, so the newest event
// is visible before the next header. Lines that arrive later still join it,
// and its final form opens the next EventRecords.
//
// # Rotation
//
// The file counts as rotated when it is smaller than the offset already
// consumed, when the path now names a different file (device and inode
// differ, on platforms that expose them), or when the bytes already consumed
// changed: the cursor keeps the first bytes of the file and the bytes just
// before its offset and compares them on every check, which catches a file
// truncated and rewritten past the old offset between two checks. The
// cursor rewinds to zero, the
// parser and the partial line are dropped and an EventReset is sent before
// any record of the new file.
//
// # Errors
//
// A failed stat, open or read produces an EventError carrying the Status
// with the error, the number of consecutive failures and the next retry
// time. Checks pause until then; the delay doubles per failure up to
// RetryMax (30s by default). The first successful check afterwards sends
// EventRecovered.
//
// # Cancellation
//
// Run returns when its context ends. Sends select on the context, so no
// event is delivered once cancellation is observed.
package logtail
