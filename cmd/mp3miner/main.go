package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jscyril/mp3miner/api"
	"github.com/jscyril/mp3miner/internal/audio"
	"github.com/jscyril/mp3miner/internal/config"
	"github.com/jscyril/mp3miner/internal/download"
	"github.com/jscyril/mp3miner/internal/log"
	"github.com/jscyril/mp3miner/internal/playlist"
	"github.com/jscyril/mp3miner/internal/session"
	"github.com/jscyril/mp3miner/internal/ui"
	playerrors "github.com/jscyril/mp3miner/pkg/errors"
	"github.com/jscyril/mp3miner/pkg/events"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	logLevel   string
	start      int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "mp3miner [flags] <media-url>...",
		Short:         "Play a list of remote MP3 files in the terminal",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to the config file")
	cmd.Flags().StringVarP(&opts.logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	cmd.Flags().IntVarP(&opts.start, "start", "s", 0, "Index of the track to play on startup, -1 to wait")

	return cmd
}

func loadConfig(opts *options) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	path := opts.configPath
	if path == "" {
		path = config.GetConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()

	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, nil
}

func run(ctx context.Context, opts *options, args []string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := log.Setup(cfg.LogLevel, cfg.LogFile); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	urls := lo.Map(args, func(a string, _ int) api.MediaURL { return api.MediaURL(a) })
	pl, err := playlist.Load(ctx, playlist.StaticResolver(urls), "")
	if err != nil {
		if errors.Is(err, playerrors.ErrNoMediaFound) {
			return errors.New("no MP3 files found")
		}
		return err
	}
	log.Infof("Loaded %d tracks", pl.Len())

	fs := afero.NewOsFs()
	engine := audio.NewAudioEngine(fs)
	downloader := download.NewHTTPDownloader(fs,
		download.WithUserAgent(cfg.UserAgent),
		download.WithTimeout(cfg.HTTPTimeout()),
	)

	bus := events.NewEventBus()
	defer bus.Close()
	sessionEvents := bus.SubscribeAll()

	s, err := session.New(fs, pl, engine, downloader,
		session.WithTempRoot(cfg.TempRoot),
		session.WithTickInterval(cfg.TickInterval()),
		session.WithDefaultTrackLength(cfg.DefaultTrackLength()),
		session.WithPublisher(bus),
	)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	start := opts.start
	if start >= pl.Len() {
		start = -1
	}
	if err := ui.Run(ctx, s, sessionEvents, cfg.KeyBindings, start); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
