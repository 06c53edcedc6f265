// Package listener is the long-lived process side of now-playing detection.
//
// A Listener tracks the notifications that are currently posted, extracts a
// payload from each one, and hands payloads to the arbiter, which emits only
// changes. Removing the last usable notification resets the session and
// publishes a cleared event.
package listener
