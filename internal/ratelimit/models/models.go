// Package models holds the rate limit value types shared by stores and middleware.
package models

import (
	"strings"
	"time"
)

// Class groups routes that share one budget.
type Class string

const (
	ClassPublic Class = "public"
	ClassAPI    Class = "api"
)

// Limit is the number of requests allowed per sliding window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result is the outcome of consuming one request from a bucket.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Key builds the bucket key for a caller within class. Identity segments are
// escaped so a caller cannot address another caller's bucket.
func Key(class Class, kind, identity string) string {
	return string(class) + ":" + kind + ":" + escape(identity)
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "_", "__")
	return strings.ReplaceAll(s, ":", "_c")
}
