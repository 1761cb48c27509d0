// Package logparse turns raw Karaf log lines into structured records.
//
// A record starts at a header line ("timestamp | LEVEL | ... | message")
// and owns every following line until the next header, which is how stack
// traces stay attached to the event that produced them. Content that shows
// up without a header becomes an UNKNOWN record instead of being dropped,
// so the parser never fails on odd input.
//
// Parsers are fed one line at a time and are not safe for concurrent use;
// each tail watcher owns its own instance.
package logparse
