package domain

import "time"

// Session binds an opaque cookie value to an account email. One account may
// hold many concurrent sessions.
type Session struct {
	ID         string
	Email      string
	ValidUntil time.Time
}
