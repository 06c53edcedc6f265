// Package wikipedia resolves an artist name to a Wikipedia article through
// OpenSearch and reads the article's plain-text summary.
package wikipedia
