// Package itunes queries the iTunes Search API for song artwork, artist
// profiles and an artist's catalogue.
package itunes
