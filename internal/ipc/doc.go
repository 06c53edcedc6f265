// Package ipc exposes the daemon over JSON-RPC Unix sockets and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management and the request/response DTOs, which
// alias the HTTP API types so both transports stay in step. Add new RPC
// methods to the service and the client together.
package ipc
