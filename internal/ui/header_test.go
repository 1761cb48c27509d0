package ui

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"karaf.log", 20, "karaf.log"},
		{"karaf.log", 9, "karaf.log"},
		{"karaf.log.1", 8, "karaf..."},
		{"karaf.log", 3, "kar"},
		{"karaf.log", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTruncateMiddle(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"/opt/karaf/data/log/karaf.log", 40, "/opt/karaf/data/log/karaf.log"},
		{"/opt/karaf/data/log/karaf.log", 15, "/opt...araf.log"},
		{"/opt/karaf/data/log/karaf.log", 5, "/opt/"},
		{"/opt/karaf", 0, ""},
	}
	for _, tt := range tests {
		if got := truncateMiddle(tt.in, tt.max); got != tt.want {
			t.Fatalf("truncateMiddle(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 records"},
		{1, "1 record"},
		{2, "2 records"},
		{12345, "12,345 records"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, "record"); got != tt.want {
			t.Fatalf("plural(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("open karaf.log: %w", os.ErrNotExist), "file not found"},
		{fmt.Errorf("open karaf.log: %w", os.ErrPermission), "permission denied"},
		{errors.New("disk on fire"), "disk on fire"},
	}
	for _, tt := range tests {
		if got := describeError(tt.err); got != tt.want {
			t.Fatalf("describeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestFormatRetry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		next time.Time
		want string
	}{
		{time.Time{}, ""},
		{now.Add(-time.Second), "retrying..."},
		{now.Add(2400 * time.Millisecond), "retry in 2s"},
		{now.Add(90 * time.Second), "retry in 1m30s"},
	}
	for _, tt := range tests {
		if got := formatRetry(tt.next, now); got != tt.want {
			t.Fatalf("formatRetry(%v) = %q, want %q", tt.next, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := displayName("/opt/karaf/data/log/karaf.log"); got != "karaf.log" {
		t.Fatalf("displayName = %q, want karaf.log", got)
	}
	if got := displayName(""); got != "?" {
		t.Fatalf("displayName(\"\") = %q, want ?", got)
	}
}
