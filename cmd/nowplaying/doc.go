// Command nowplaying is the operator CLI for the nowplaying daemon.
//
// Commands that need live state (current, post, lyrics, search, status) talk
// to nowplayingd over the JSON-RPC socket. Commands that only need the
// artist memory (parse, memory) open the SQLite store directly so they work
// while the daemon is offline.
package main
