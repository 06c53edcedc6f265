package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"nowplaying/internal/api"
	"nowplaying/internal/config"
	"nowplaying/internal/identity"
	"nowplaying/internal/memory"
)

func newMemoryCommand(ctx *commandContext) *cobra.Command {
	memoryCmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect and teach the learned artist memory",
	}
	memoryCmd.AddCommand(newMemoryListCommand(ctx))
	memoryCmd.AddCommand(newMemoryLearnCommand(ctx))
	return memoryCmd
}

func newMemoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List learned artists by confidence",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withMemory(func(_ *config.Config, store *memory.Store) error {
				artists, err := store.LookupAll(cmd.Context())
				if err != nil {
					return err
				}
				if limit > 0 && len(artists) > limit {
					artists = artists[:limit]
				}
				if asJSON {
					return writeJSON(cmd, api.MemoryResponse{Artists: api.FromArtists(artists)})
				}
				out := cmd.OutOrStdout()
				if len(artists) == 0 {
					fmt.Fprintln(out, "No artists learned yet")
					return nil
				}
				rows := make([][]string, 0, len(artists))
				for _, a := range artists {
					updated := ""
					if !a.UpdatedAt.IsZero() {
						updated = a.UpdatedAt.Local().Format("2006-01-02 15:04")
					}
					rows = append(rows, []string{a.DisplayName, strconv.Itoa(a.Confidence), strconv.Itoa(a.Occurrences), updated})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Artist", "Confidence", "Seen", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many artists")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output artists as JSON")
	return cmd
}

func newMemoryLearnCommand(ctx *commandContext) *cobra.Command {
	var withAliases bool
	cmd := &cobra.Command{
		Use:   "learn <artist...>",
		Short: "Teach an artist name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return ctx.withMemory(func(cfg *config.Config, store *memory.Store) error {
				if err := store.Learn(cmd.Context(), name, cfg.Memory.InsertScore, cfg.Memory.IncrementScore); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				artist, err := store.Get(cmd.Context(), name)
				if err != nil {
					return err
				}
				if artist == nil {
					return fmt.Errorf("artist name %q is too short to learn", name)
				}
				fmt.Fprintf(out, "Learned %s (confidence %d, seen %d)\n", artist.DisplayName, artist.Confidence, artist.Occurrences)
				if !withAliases {
					return nil
				}
				for _, alias := range identity.Aliases(name) {
					inserted, err := store.InsertAliasIfMissing(cmd.Context(), alias)
					if err != nil {
						return err
					}
					if inserted {
						fmt.Fprintf(out, "Added alias %s\n", alias)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&withAliases, "aliases", true, "Also seed shorter prefix aliases")
	return cmd
}
