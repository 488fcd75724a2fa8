// Package broadcast implements the named-channel publish/subscribe registry.
//
// Channel membership is owned by a single goroutine (actor pattern, no mutexes);
// Broadcast takes a snapshot of a channel's subscriber set from the actor and then
// delivers to each subscriber in turn on the caller's goroutine. There is no
// per-subscriber isolation: a failing transport aborts the rest of that
// Broadcast call.
package broadcast
