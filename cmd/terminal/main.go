package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/mazerace/audio"
	"github.com/zucenko/mazerace/config"
	"github.com/zucenko/mazerace/race"
	"github.com/zucenko/mazerace/tui"
)

const VOLUME = 0.5

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyLogLevel()
	opts, err := cfg.RaceOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// the screen owns the terminal, logs go to a file
	logPath := filepath.Join(os.TempDir(), "mazerace.log")
	if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		defer f.Close()
		log.SetOutput(f)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	sound := audio.NewSoundManager(VOLUME)
	if cfg.Sound {
		// Non-fatal, the race runs without sound
		_ = sound.Initialize()
	}

	renderer := tui.NewRenderer(screen)
	session, err := race.New(opts, race.Sinks{Render: renderer, Audio: sound, Visual: renderer}, cfg.Rand())
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "race: %v\n", err)
		os.Exit(1)
	}
	renderer.Present(session.Snapshot())

	finished := run(screen, renderer, sound, session)
	sound.Cleanup()
	screen.Fini()
	if finished {
		fmt.Print(race.Export(session.Results(), session.Summary()))
	}
}

// run drives the race and handles keys until the player quits. It reports
// whether the race ran to the end.
func run(screen tcell.Screen, renderer *tui.Renderer, sound *audio.SoundManager, session *race.Session) bool {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	done := make(chan error, 1)
	go func() {
		done <- race.NewDriver(session).Run(ctx)
	}()

	over := false
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if over || ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					cancel()
					if !over {
						<-done
					}
					return over
				}
				if ev.Key() == tcell.KeyRune && ev.Rune() == 'm' {
					sound.SetMuted(!sound.Muted())
				}
			case *tcell.EventResize:
				screen.Sync()
				renderer.Redraw()
			}
		case err := <-done:
			if err != nil {
				log.Warnf("race ended early: %v", err)
				return false
			}
			over = true
			renderer.Overlay(race.Export(session.Results(), session.Summary()) + "\npress any key")
		}
	}
}
