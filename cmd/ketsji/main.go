// Package main is the entry point for the headless ketsji player.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/ketsji/internal/config"
	"github.com/Faultbox/ketsji/internal/converter"
	"github.com/Faultbox/ketsji/internal/engine"
	"github.com/Faultbox/ketsji/internal/engine/action"
	"github.com/Faultbox/ketsji/internal/logger"
)

var (
	flagFrames = flag.Uint64("frames", 0, "Stop after this many frames (0 runs until interrupted)")
	flagLink   = flag.String("link", "", "Comma separated libraries to load asynchronously at startup")
	flagPlay   = flag.String("play", "", "Play actions on start, as object:action[:mode], comma separated")
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== ketsji player ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("player error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("player closed normally")
}

func run(cfg *config.Config) (err error) {
	e, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer func() {
		if serr := e.Shutdown(); serr != nil && err == nil {
			err = serr
		}
	}()

	s, err := e.Start()
	if err != nil {
		return fmt.Errorf("starting scene: %w", err)
	}

	for _, path := range splitList(*flagLink) {
		st, err := e.LinkLibrary(path, converter.GroupScene, s, converter.Async|converter.LoadActions)
		if err != nil {
			return fmt.Errorf("linking %s: %w", path, err)
		}
		st.SetFinishCallback(func(st *converter.LibLoadStatus) {
			if st.Err() != nil {
				logger.Warn("library failed", zap.String("library", st.Path()), zap.Error(st.Err()))
				return
			}
			logger.Info("library ready", zap.String("library", st.Path()), zap.Duration("took", st.Duration()))
		})
	}

	for _, spec := range splitList(*flagPlay) {
		parts := strings.Split(spec, ":")
		if len(parts) < 2 {
			return fmt.Errorf("invalid -play value %q, want object:action[:mode]", spec)
		}
		obj, ok := s.ObjectByName(parts[0])
		if !ok {
			return fmt.Errorf("no object %q in scene %s", parts[0], s.Name())
		}
		clip, ok := s.ActionByName(parts[1])
		if !ok {
			return fmt.Errorf("no action %q in scene %s", parts[1], s.Name())
		}
		p := action.DefaultPlayParams(clip.FrameRange[0], clip.FrameRange[1])
		if len(parts) > 2 {
			p.Mode = action.ParsePlayMode(parts[2])
		}
		if !obj.Base().PlayAction(clip.Name, 0, p, e.ClockContext()) {
			logger.Warn("action not started", zap.String("object", parts[0]), zap.String("action", parts[1]))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := e.Run(ctx, *flagFrames); err != nil && ctx.Err() == nil {
		return err
	}
	e.Converter().PrintStats()
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
