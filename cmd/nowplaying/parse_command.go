package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"nowplaying/internal/config"
	"nowplaying/internal/identity"
	"nowplaying/internal/logging"
	"nowplaying/internal/memory"
)

// readOnlyMemory lets parse consult learned artists without teaching them.
type readOnlyMemory struct {
	store *memory.Store
}

func (m readOnlyMemory) LookupAll(ctx context.Context) ([]memory.Artist, error) {
	return m.store.LookupAll(ctx)
}

func (readOnlyMemory) Learn(context.Context, string, int, int) error { return nil }

func (readOnlyMemory) InsertAliasIfMissing(context.Context, string) (bool, error) { return false, nil }

type parseResult struct {
	Matched  bool   `json:"matched"`
	Title    string `json:"title,omitempty"`
	Artist   string `json:"artist,omitempty"`
	Strategy string `json:"strategy,omitempty"`
}

func newParseCommand(ctx *commandContext) *cobra.Command {
	var learn bool
	var asJSON bool
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "parse [text...]",
		Short: "Split a notification line into song title and artist",
		Long: "Runs the title/artist splitter against the local artist memory.\n" +
			"By default the memory is only read; pass --learn to record the parsed artist.",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, " ")
			if fromStdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				raw = string(data)
			}
			if strings.TrimSpace(raw) == "" {
				return fmt.Errorf("nothing to parse; pass text or --stdin")
			}

			return ctx.withMemory(func(cfg *config.Config, store *memory.Store) error {
				var mem identity.Memory = readOnlyMemory{store: store}
				if learn {
					mem = store
				}
				splitter := identity.NewSplitter(mem,
					identity.WithLogger(logging.NewNop()),
					identity.WithScores(cfg.Memory.InsertScore, cfg.Memory.IncrementScore),
					identity.WithUnknownArtist(cfg.Extractor.UnknownArtist))

				parsed, ok := splitter.Split(cmd.Context(), raw)
				result := parseResult{Matched: ok}
				if ok {
					result.Title = parsed.SongTitle
					result.Artist = parsed.ArtistName
					result.Strategy = string(parsed.Strategy)
				}
				if asJSON {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				if !ok {
					fmt.Fprintln(out, "No title/artist split found")
					return nil
				}
				fmt.Fprintf(out, "Title:    %s\n", result.Title)
				fmt.Fprintf(out, "Artist:   %s\n", result.Artist)
				fmt.Fprintf(out, "Strategy: %s\n", humanLabel(result.Strategy))
				if learn {
					fmt.Fprintln(out, "Learned: "+yesNo(true))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&learn, "learn", false, "Record the parsed artist in memory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the result as JSON")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the text (possibly multi-line) from stdin")
	return cmd
}
