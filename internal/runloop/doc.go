// Package runloop provides the serialized task executor that models the
// single cooperative UI thread.
//
// Timers, remote-call completions and presentation callbacks all post
// closures onto one Loop, so the in-memory dog collection needs no locks.
// Posting is safe from any goroutine; tasks execute one at a time on the
// goroutine running the loop.
package runloop
