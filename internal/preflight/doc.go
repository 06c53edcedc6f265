// Package preflight provides readiness checks for the filesystem paths and
// the lyrics service nowplaying depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll on start and logs every failed check.
//   - The CLI "nowplaying status" command prints the same results.
package preflight
