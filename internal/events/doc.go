// Package events buffers emitted now-playing payloads so clients can poll or
// long-poll for changes by sequence number.
package events
