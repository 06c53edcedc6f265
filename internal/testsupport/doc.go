// Package testsupport provides shared fixtures for package tests: isolated
// configs rooted in t.TempDir and opened memory stores with cleanup.
package testsupport
