package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"sandfall/internal/app"
	"sandfall/internal/audio"
	"sandfall/internal/core"
	"sandfall/internal/sims/sand"
	"sandfall/internal/term"

	"github.com/gdamore/tcell/v2"
)

type session struct {
	screen tcell.Screen
	world  *sand.World
	view   *term.View
	cue    *audio.Cue
	clock  *core.FixedStep

	material sand.MaterialID
	seed     int64
	paused   bool
	tickOnce bool
	failures *app.FailureLog
}

func main() {
	cfg := app.NewConfig()
	cfg.Width = 120
	cfg.Height = 60
	cfg.Bind(flag.CommandLine)
	logPath := flag.String("log", "", "write log output to this file")
	mute := flag.Bool("mute", false, "disable audio cues")
	flag.Parse()

	log.SetOutput(io.Discard)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}
	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown sim %q (available: %v)\n", cfg.Sim, core.Names())
		os.Exit(2)
	}
	world, ok := factory(cfg.SimConfig()).(*sand.World)
	if !ok {
		fmt.Fprintf(os.Stderr, "sim %q has no terminal front-end\n", cfg.Sim)
		os.Exit(2)
	}
	material, _ := cfg.SelectedMaterial()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()

	cue := audio.NewCue()
	if !*mute {
		if err := cue.Initialize(); err != nil {
			log.Printf("Audio initialization failed: %v", err)
		}
	}

	size := world.Size()
	s := &session{
		screen:   screen,
		world:    world,
		view:     term.NewView(size.W, size.H, world.Palette()),
		cue:      cue,
		clock:    core.NewFixedStep(cfg.TPS),
		material: material,
		seed:     cfg.Seed,
		failures: app.NewFailureLog(log.Printf),
	}
	world.Reset(cfg.Seed)
	s.run()

	cue.Close()
	screen.Fini()
}

func (s *session) run() {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go term.Pump(s.screen, events, done)

	cells := []uint8(nil)
	for {
		select {
		case ev, ok := <-events:
			if !ok || !s.handle(ev) {
				return
			}
		case <-ticker.C:
			steps := s.clock.Pending()
			if s.paused {
				steps = 0
			}
			if s.tickOnce {
				steps, s.tickOnce = 1, false
			}
			for i := 0; i < steps; i++ {
				s.failures.Record(s.world.StepContext(context.Background()))
			}
			cells = s.world.CopyCells(cells)
			s.view.Draw(s.screen, cells)
			s.view.Status(s.screen, s.status())
			s.screen.Show()
		}
	}
}

func (s *session) status() string {
	st := s.world.Stats()
	state := ""
	if s.paused {
		state = " paused"
	} else if s.world.Asleep() {
		state = " asleep"
	}
	drain := ""
	if s.world.Drain() {
		drain = " drain"
	}
	return fmt.Sprintf("%s r=%d tick %d moves %d chunks %d%s%s", s.material, s.world.BrushRadius(), st.Tick, st.Moves, st.ActiveChunks, drain, state)
}

func (s *session) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		act, slot := term.KeyAction(ev.Key(), ev.Rune())
		switch act {
		case term.ActionQuit:
			return false
		case term.ActionPause:
			s.paused = !s.paused
		case term.ActionStep:
			s.tickOnce = true
		case term.ActionReset:
			s.world.Reset(s.seed)
		case term.ActionReseed:
			s.seed = time.Now().UnixNano()
			s.world.Reset(s.seed)
		case term.ActionDrain:
			open := !s.world.Drain()
			s.world.SetDrain(open)
			s.cue.Drain(open)
		case term.ActionBrushDown:
			s.world.SetIntParameter("brush", s.world.BrushRadius()-1)
		case term.ActionBrushUp:
			s.world.SetIntParameter("brush", s.world.BrushRadius()+1)
		case term.ActionMaterial:
			if ids := sand.Placeable(); slot < len(ids) {
				s.material = ids[slot]
			}
		}
	case *tcell.EventMouse:
		col, row := ev.Position()
		x, y, ok := s.view.Cell(col, row)
		if !ok {
			return true
		}
		r := s.world.BrushRadius()
		switch {
		case ev.Buttons()&tcell.Button1 != 0:
			if tries := s.world.SprayTries(); tries > 0 {
				s.world.Spray(x, y, r, s.material, tries)
			} else {
				s.world.Inject(x, y, r, s.material)
			}
		case ev.Buttons()&tcell.Button2 != 0:
			s.world.Erase(x, y, r)
		}
	case *tcell.EventResize:
		s.screen.Clear()
		s.screen.Sync()
	}
	return true
}
