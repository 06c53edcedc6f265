// Package arbiter picks one payload among concurrently active sources and
// suppresses repeated emissions of the same payload.
//
// The last emitted payload and its event key live in a Session that callers
// own and pass into every call; nothing here is process-global.
package arbiter
