package identity

import (
	"strings"

	"nowplaying/internal/textutil"
)

// helperMarkers are boilerplate phrases assistant notifications show instead
// of (or next to) the recognised song. Matched case-insensitively.
var helperMarkers = []string{
	"song history",
	"historial de canciones",
	"historial de música",
	"now playing",
	"reproduciendo ahora",
	"se está reproduciendo",
	"está sonando",
	"esta sonando",
	"presiona y ve tu historial",
	"mantén presionado",
	"mantén pulsado",
	"press and hold",
	"touch and hold",
	"tap to see",
	"toca para ver",
	"toca para obtener",
	"tap to learn more",
}

// IsHelperText reports whether text contains a known boilerplate marker.
func IsHelperText(text string) bool {
	key := textutil.Key(text)
	if key == "" {
		return false
	}
	for _, marker := range helperMarkers {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}
