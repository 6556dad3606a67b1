package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"cyfox/internal/core/coordinator"
	"cyfox/internal/core/state"
	"cyfox/internal/input"
	"cyfox/internal/log"
	"cyfox/internal/modules/reddit"
	"cyfox/internal/modules/reminder"
	"cyfox/internal/modules/scanner"
	"cyfox/internal/platform"
	"cyfox/internal/storage"
	"cyfox/internal/ui/preview"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"golang.org/x/sync/errgroup"
)

const appName = "cyfox"

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the configuration file")
	flag.Parse()

	config, err := storage.LoadConfig(*configPath)
	log.Configure(log.Config{Level: config.LogLevel})
	logger := log.WithComponent("main")
	if err != nil {
		logger.Warn().Err(err).Str("path", *configPath).Msg("config not usable, running with defaults")
	}

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		logger.Error().Err(err).Msg("another instance is already running")
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	store := state.New()
	modules := coordinator.Modules{
		Reminder: reminder.New(config.Reminder, store),
		Scanner: scanner.New(config.Scanner, store,
			scanner.NewConnectScanner(config.Scanner.DialTimeout, config.Scanner.MaxHosts)),
		Reddit: reddit.New(config.Reddit, store,
			reddit.NewHTTPFetcher(config.Reddit.RequestTimeout, config.Reddit.UserAgent, config.Reddit.PostsPerSub)),
	}
	coord := coordinator.New(store, config, modules)
	source := input.NewSource(config.Input.DebounceWindow)

	fyneApp := app.NewWithID("com.cyfox.app")
	previewWindow := preview.New(fyneApp, config.Preview, source.Offer)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)
	coord.Start()
	group.Go(func() error {
		return coord.RunInput(groupCtx, source, config.Input.PollInterval)
	})

	if buttons, err := platform.NewButtonSource(config.Input.Pins); err == nil {
		group.Go(func() error {
			return buttons.Run(groupCtx, source.Offer)
		})
	} else {
		logger.Info().Msg("no gpio present, buttons simulated by preview keys")
	}

	go previewWindow.RunFrameLoop(groupCtx.Done(), config.Preview.FrameRate, coord.Snapshot)
	go func() {
		<-groupCtx.Done()
		fyne.Do(fyneApp.Quit)
	}()

	previewWindow.SetCloseIntercept(cancel)
	previewWindow.Show()
	logger.Info().Msg("cyfox is running")
	fyneApp.Run()

	cancel()
	coord.Stop()
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn().Err(err).Msg("background loop exited with error")
	}
	logger.Info().Msg("cyfox stopped")
}
