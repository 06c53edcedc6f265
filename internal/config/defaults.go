package config

const (
	defaultConfigPath          = "~/.config/nowplaying/config.toml"
	defaultDataDir             = "~/.local/share/nowplaying"
	defaultLogDir              = "~/.local/share/nowplaying/logs"
	defaultAPIBind             = "127.0.0.1:7488"
	defaultMemoryFile          = "memory.db"
	defaultSocketFile          = "nowplaying.sock"
	defaultInsertScore         = 5
	defaultIncrementScore      = 2
	defaultLyricsBaseURL       = "https://lrclib.net"
	defaultLyricsUserAgent     = "nowplaying/dev (+https://lrclib.net)"
	defaultLyricsTimeout       = 10
	defaultLyricsRetryAttempts = 3
	defaultLyricsRetryDelayMS  = 500
	defaultLyricsSearchLimit   = 10
	defaultITunesURL           = "https://itunes.apple.com"
	defaultWikipediaURL        = "https://es.wikipedia.org"
	defaultMetadataTimeout     = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// DefaultUnknownArtist labels payloads whose artist could not be parsed.
const DefaultUnknownArtist = "Unknown artist"

// defaultNativePackages lists the on-device song recognizers whose
// notifications describe ambient music rather than local playback.
var defaultNativePackages = []string{
	"com.google.intelligence.sense",
	"com.google.android.as",
	"com.google.android.apps.pixel.nowplaying",
	"com.shazam.android",
	"com.samsung.android.bixby.agent",
}

// defaultIgnoredPackages never describe what is playing: the companion app
// that renders our own notification and the system UI shell.
var defaultIgnoredPackages = []string{
	"net.iozamudioa.singsync",
	"com.android.systemui",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Memory: Memory{
			InsertScore:    defaultInsertScore,
			IncrementScore: defaultIncrementScore,
		},
		Extractor: Extractor{
			NativePackages:  append([]string(nil), defaultNativePackages...),
			IgnoredPackages: append([]string(nil), defaultIgnoredPackages...),
			UnknownArtist:   DefaultUnknownArtist,
		},
		Lyrics: Lyrics{
			BaseURL:        defaultLyricsBaseURL,
			UserAgent:      defaultLyricsUserAgent,
			TimeoutSeconds: defaultLyricsTimeout,
			RetryAttempts:  defaultLyricsRetryAttempts,
			RetryDelayMS:   defaultLyricsRetryDelayMS,
			PreferSynced:   true,
			SearchLimit:    defaultLyricsSearchLimit,
		},
		Metadata: Metadata{
			Enabled:        true,
			ITunesURL:      defaultITunesURL,
			WikipediaURL:   defaultWikipediaURL,
			TimeoutSeconds: defaultMetadataTimeout,
			FillArtwork:    true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
