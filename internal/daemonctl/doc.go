// Package daemonctl launches, probes, and stops the nowplayingd process on
// behalf of the CLI.
package daemonctl
