// Command nowplayingd runs the now-playing daemon: it listens for
// notification signals over the IPC socket, keeps the current track, learns
// artists, and serves lyrics plus the optional HTTP API.
package main
