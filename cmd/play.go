package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/carekiosk/kiosk/analytics"
	"github.com/carekiosk/kiosk/filesystem"
	"github.com/carekiosk/kiosk/icon"
	"github.com/carekiosk/kiosk/key"
	"github.com/carekiosk/kiosk/log"
	"github.com/carekiosk/kiosk/open"
	"github.com/carekiosk/kiosk/orientation"
	"github.com/carekiosk/kiosk/player"
	"github.com/carekiosk/kiosk/ratings"
	"github.com/carekiosk/kiosk/tui"
	"github.com/carekiosk/kiosk/util"
	"github.com/carekiosk/kiosk/video"
	"github.com/carekiosk/kiosk/watch"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("file", "f", "", "Read the video descriptor from a JSON file")
	playCmd.Flags().Int("id", 0, "Video id")
	playCmd.Flags().StringP("name", "n", "", "Video title")
	playCmd.Flags().String("poster", "", "Poster image URL")
	playCmd.Flags().String("progressive", "", "Progressive (MP4) fallback URL")
	playCmd.Flags().Bool("no-captions", false, "Do not fetch closed captions")

	playCmd.MarkFlagsMutuallyExclusive("file", "id")
	playCmd.MarkFlagsMutuallyExclusive("file", "name")
}

// playCmd mounts one video on the kiosk surface.
var playCmd = &cobra.Command{
	Use:   "play [stream url]",
	Short: "Play a patient education video",
	Long: `Play one video on the kiosk surface. The descriptor comes either from a JSON file
(see "kiosk descriptor schema") or from the flags and the stream URL argument.`,
	Example: `  kiosk play --id 42 --name "Inhaler technique" https://cdn.example.org/42/master.m3u8
  kiosk play -f inhaler.json -b browser`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		desc, err := descriptorFrom(cmd, args)
		handleErr(err)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		backendName := viper.GetString(key.PlayerBackend)
		backend, err := player.New(backendName)
		handleErr(err)

		var (
			presenter orientation.Presenter
			chrome    *orientation.Chrome
			router    chi.Router
		)

		switch b := backend.(type) {
		case *player.MPV:
			CheckDependencies(viper.GetString(key.PlayerMPVBinary))
			presenter = orientation.NewNative(b)
		case *player.Browser:
			chrome = orientation.NewChrome(b.SetChromeHidden)
			presenter = chrome
			router = b.Router()
		}

		emitter, serveMetrics := emitters(router)

		if b, ok := backend.(*player.Browser); ok {
			handleErr(b.Listen())
			if viper.GetBool(key.PlayerBrowserOpen) {
				page := open.PageURL(viper.GetString(key.PlayerBrowserAddr))
				if err := open.StartWith(page, viper.GetString(key.PlayerBrowserApp)); err != nil {
					log.Warnf("open %s: %v", page, err)
					fmt.Printf("%s Open %s in the kiosk browser\n", icon.Get(icon.Link), page)
				}
			}
		}
		if serveMetrics != nil {
			go serveMetrics()
		}

		deps := watch.ConfiguredDeps(backend, presenter)
		deps.Emitter = emitter
		deps.DisableCaptions = deps.DisableCaptions || lo.Must(cmd.Flags().GetBool("no-captions"))
		if client, ok := ratings.FromConfig(); ok {
			deps.Store = client
		}

		p, err := watch.New(desc, deps)
		handleErr(err)

		handleErr(tui.Run(ctx, &tui.Options{Player: p, Chrome: chrome}))

		if flushed := p.Flushed(); flushed != nil {
			erase := util.PrintErasable(fmt.Sprintf("%s Saving progress...", icon.Get(icon.Progress)))
			select {
			case <-flushed:
			case <-ctx.Done():
			}
			erase()
		}

		if p.Progress() > 0 {
			fmt.Printf("%s %s %d%%\n", icon.Get(icon.Success), desc.Name, p.Progress())
		}
	},
}

// descriptorFrom reads the descriptor from --file, or assembles it from the flags and the stream argument.
func descriptorFrom(cmd *cobra.Command, args []string) (video.Descriptor, error) {
	var desc video.Descriptor

	if path := lo.Must(cmd.Flags().GetString("file")); path != "" {
		return readDescriptor(path)
	}

	if len(args) == 0 {
		return desc, errors.New("a stream url or --file is required")
	}

	desc = video.Descriptor{
		ID:                lo.Must(cmd.Flags().GetInt("id")),
		Name:              lo.Must(cmd.Flags().GetString("name")),
		AdaptiveStreamURL: args[0],
		PosterURL:         optional(lo.Must(cmd.Flags().GetString("poster"))),
		ProgressiveURL:    optional(lo.Must(cmd.Flags().GetString("progressive"))),
	}
	if desc.Name == "" {
		desc.Name = fmt.Sprintf("Video %d", desc.ID)
	}
	return desc, desc.Validate()
}

func readDescriptor(path string) (video.Descriptor, error) {
	var desc video.Descriptor

	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return desc, err
	}
	if err := json.Unmarshal(data, &desc); err != nil {
		return desc, fmt.Errorf("descriptor %s: %w", path, err)
	}
	return desc, desc.Validate()
}

func optional(s string) mo.Option[string] {
	return mo.EmptyableToOption(s)
}

// emitters assembles the analytics sinks from config. Counters are mounted on router when there is one;
// the returned function, when not nil, serves them on the configured metrics address.
func emitters(router chi.Router) (analytics.Emitter, func()) {
	sinks := analytics.Emitters{analytics.MetricsEmitter{}}
	if viper.GetBool(key.AnalyticsLog) {
		sinks = append(sinks, analytics.LogEmitter{})
	}

	if router != nil {
		router.Handle("/metrics", analytics.Handler())
	}

	addr := viper.GetString(key.AnalyticsMetricsAddr)
	if addr == "" {
		return sinks, nil
	}

	return sinks, func() {
		r := chi.NewRouter()
		r.Handle("/metrics", analytics.Handler())
		server := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %v", err)
		}
	}
}
