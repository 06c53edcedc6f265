package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"nowplaying/internal/ipc"
)

func newLyricsCommand(ctx *commandContext) *cobra.Command {
	var title, artist string
	var plain, synced, showTrace, asJSON bool

	cmd := &cobra.Command{
		Use:   "lyrics",
		Short: "Fetch lyrics for a track (defaults to the current track)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain && synced {
				return fmt.Errorf("--plain and --synced are mutually exclusive")
			}
			req := ipc.FetchLyricsRequest{Title: strings.TrimSpace(title), Artist: strings.TrimSpace(artist)}
			switch {
			case plain:
				v := false
				req.Synced = &v
			case synced:
				v := true
				req.Synced = &v
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.FetchLyrics(req)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if md := resp.Metadata; md != nil {
					header := md.TrackName
					if md.ArtistName != "" {
						header += " - " + md.ArtistName
					}
					if md.Year > 0 {
						header += " (" + strconv.Itoa(md.Year) + ")"
					}
					fmt.Fprintln(out, header)
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, resp.Lyrics)
				if showTrace {
					fmt.Fprintln(out)
					for _, line := range resp.Trace {
						fmt.Fprintln(out, "  "+line)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Track title")
	cmd.Flags().StringVarP(&artist, "artist", "a", "", "Artist name")
	cmd.Flags().BoolVar(&plain, "plain", false, "Prefer plain lyrics")
	cmd.Flags().BoolVar(&synced, "synced", false, "Prefer time-synced lyrics")
	cmd.Flags().BoolVar(&showTrace, "trace", false, "Print the lookup trace")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the result as JSON")
	return cmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search lyrics candidates by free text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SearchLyrics(query)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if len(resp.Candidates) == 0 {
					fmt.Fprintln(out, "No candidates found")
					return nil
				}
				rows := make([][]string, 0, len(resp.Candidates))
				for i, c := range resp.Candidates {
					rows = append(rows, []string{strconv.Itoa(i + 1), c.TrackName, c.ArtistName, c.AlbumName, yesNo(c.Lyrics != "")})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Track", "Artist", "Album", "Lyrics"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output candidates as JSON")
	return cmd
}
