package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"nowplaying/internal/api"
	"nowplaying/internal/ipc"
)

func newPostCommand(ctx *commandContext) *cobra.Command {
	var sig ipc.Signal
	var media api.MediaMetadata
	var fromStdin bool
	var remove bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Send a notification signal to the daemon",
		Long: "Posts a notification as the OS integration would. Use --stdin to send a\n" +
			"JSON signal object, or --remove with --key to simulate a dismissed notification.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				if err := json.Unmarshal(data, &sig); err != nil {
					return fmt.Errorf("decode signal: %w", err)
				}
			}
			if sig.Media == nil && media != (api.MediaMetadata{}) {
				sig.Media = &media
			}
			sig.Key = strings.TrimSpace(sig.Key)
			if sig.Key == "" && strings.TrimSpace(sig.SourcePackage) == "" {
				return fmt.Errorf("signal requires --key or --package")
			}

			return ctx.withClient(func(client *ipc.Client) error {
				var (
					resp *ipc.SignalResponse
					err  error
				)
				if remove {
					key := sig.Key
					if key == "" {
						key = strings.TrimSpace(sig.SourcePackage)
					}
					resp, err = client.RemoveSignal(key)
				} else {
					resp, err = client.PostSignal(sig)
				}
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if !remove {
					fmt.Fprintf(out, "Emitted: %s\n", yesNo(resp.Emitted))
				}
				renderPayload(out, resp.Current)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&sig.Key, "key", "", "Notification key")
	flags.StringVar(&sig.SourcePackage, "package", "", "Posting package name")
	flags.StringVar(&sig.Title, "title", "", "Notification title field")
	flags.StringVar(&sig.BigTitle, "big-title", "", "Expanded title field")
	flags.StringVar(&sig.Text, "text", "", "Notification text field")
	flags.StringVar(&sig.SubText, "sub-text", "", "Notification sub-text field")
	flags.StringVar(&sig.BigText, "big-text", "", "Expanded text field")
	flags.BoolVar(&sig.KnownNative, "native", false, "Mark the source as a native song recognizer")
	flags.BoolVar(&sig.MediaSession, "media-session", false, "The notification carries a media session")
	flags.BoolVar(&sig.Transport, "transport", false, "The notification is a transport-control notification")
	flags.BoolVar(&sig.Ongoing, "ongoing", false, "The notification is ongoing")
	flags.BoolVar(&sig.Playing, "playing", false, "The media session is playing or buffering")
	flags.StringVar(&media.Title, "media-title", "", "Media session title")
	flags.StringVar(&media.Artist, "media-artist", "", "Media session artist")
	flags.StringVar(&media.ArtURI, "art-uri", "", "Media session album art URI")
	flags.StringVar(&sig.ArtworkURL, "artwork", "", "Artwork URL")
	flags.BoolVar(&fromStdin, "stdin", false, "Read a JSON signal from stdin")
	flags.BoolVar(&remove, "remove", false, "Remove the signal with the given key instead of posting")
	flags.BoolVar(&asJSON, "json", false, "Output the response as JSON")
	return cmd
}

func newCurrentCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show the current now-playing payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Current()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				renderPayload(cmd.OutOrStdout(), resp.Payload)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the payload as JSON")
	return cmd
}
