package identity

// Strategy names the rule that produced a ParsedIdentity.
type Strategy string

const (
	StrategyDelimiter Strategy = "delimiter"
	StrategyBy        Strategy = "by"
	StrategyQuoted    Strategy = "quoted"
	StrategyDe        Strategy = "de"
)

// ParsedIdentity is a (song, artist) pair split out of one text line.
type ParsedIdentity struct {
	SongTitle  string   `json:"song_title"`
	ArtistName string   `json:"artist_name"`
	Strategy   Strategy `json:"strategy"`
}
