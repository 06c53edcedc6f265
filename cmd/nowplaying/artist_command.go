package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"nowplaying/internal/ipc"
)

func newArtistCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "artist [name...]",
		Short: "Show an artist profile (defaults to the current artist)",
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ArtistInsight(name)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if !resp.Found || resp.Insight == nil {
					fmt.Fprintln(out, "No artist to look up")
					return nil
				}
				insight := resp.Insight
				rows := [][]string{{"Artist", insight.ArtistName}}
				if insight.PrimaryGenre != "" {
					rows = append(rows, []string{"Genre", insight.PrimaryGenre})
				}
				if insight.Country != "" {
					rows = append(rows, []string{"Country", insight.Country})
				}
				if span := releaseSpan(insight.FirstReleaseYear, insight.LatestReleaseYear); span != "" {
					rows = append(rows, []string{"Active", span})
				}
				if len(insight.PopularReleases) > 0 {
					rows = append(rows, []string{"Popular", strings.Join(insight.PopularReleases, ", ")})
				}
				fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
				if insight.ShortBio != "" {
					fmt.Fprintln(out)
					fmt.Fprintln(out, insight.ShortBio)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the profile as JSON")
	return cmd
}

func releaseSpan(first, latest int) string {
	switch {
	case first == 0 && latest == 0:
		return ""
	case first == latest || latest == 0:
		return strconv.Itoa(first)
	case first == 0:
		return strconv.Itoa(latest)
	default:
		return strconv.Itoa(first) + "-" + strconv.Itoa(latest)
	}
}
