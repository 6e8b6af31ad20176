package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/pivotwalk/internal/level"
	"github.com/samdwyer/pivotwalk/internal/motion"
	"github.com/samdwyer/pivotwalk/internal/telemetry"
	"github.com/samdwyer/pivotwalk/internal/ui"
	"github.com/samdwyer/pivotwalk/internal/walkgraph"
)

const helpText = "click: walk  <-/->: rotate  r: reset  n/p: next/prev level  q: quit"

// tickEvent and reloadEvent are posted to the screen as interrupts so every
// state change happens on the loop goroutine.
type (
	tickEvent   struct{}
	reloadEvent struct{ path string }
)

// Game holds the entire game state.
type Game struct {
	cfg      Config
	logger   *slog.Logger
	screen   *ui.Screen
	renderer *ui.Renderer
	levels   *level.Registry
	session  *Session
	watcher  *level.Watcher

	pending   Input
	marker    ui.ClickMarker
	lastTick  time.Time
	mouseDown bool
	message   string
	running   bool
}

// New creates a new game instance with the levels named by cfg.
func New(cfg Config, logger *slog.Logger) (*Game, error) {
	if logger == nil {
		logger = slog.Default()
	}
	levels, err := loadLevels(cfg)
	if err != nil {
		return nil, err
	}

	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}

	return &Game{
		cfg:      cfg,
		logger:   logger,
		screen:   screen,
		renderer: ui.NewRenderer(screen),
		levels:   levels,
		message:  helpText,
		running:  true,
	}, nil
}

func loadLevels(cfg Config) (*level.Registry, error) {
	if cfg.LevelsDir != "" {
		return level.LoadDirRegistry(cfg.LevelsDir)
	}
	return level.MustLoadRegistry(), nil
}

// Run executes the main game loop until the player quits or ctx is done.
func (g *Game) Run(ctx context.Context) error {
	tracer := telemetry.Tracer("game")

	ctx, initSpan := tracer.Start(ctx, "game.init")
	first := g.levels.First()
	if g.cfg.StartLevel != "" {
		if def := g.levels.GetByID(g.cfg.StartLevel); def != nil {
			first = def
		} else {
			g.logger.Warn("unknown start level, using first", "level", g.cfg.StartLevel)
		}
	}
	err := g.loadLevel(ctx, first)
	initSpan.SetAttributes(
		attribute.Int("levels.count", g.levels.Count()),
		attribute.String("levels.first", first.ID),
		attribute.Bool("levels.watching", g.cfg.LevelsDir != ""),
	)
	initSpan.End()
	if err != nil {
		g.screen.Close()
		return err
	}

	if g.cfg.LevelsDir != "" {
		if err := g.watch(); err != nil {
			g.logger.Warn("level reload disabled", "dir", g.cfg.LevelsDir, "error", err)
		} else {
			defer g.watcher.Close()
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go g.tick(ctx)

	g.lastTick = time.Now()
	for g.running {
		g.handleEvent(ctx, g.screen.PollEvent())
	}

	g.screen.Close()
	return nil
}

// tick posts a tick interrupt at the configured rate.
func (g *Game) tick(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.TickRate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A full event queue drops this tick; the next one covers the time.
			_ = g.screen.PostEvent(tcell.NewEventInterrupt(tickEvent{}))
		}
	}
}

// watch forwards level file changes to the loop as reload interrupts.
func (g *Game) watch() error {
	w, err := level.NewWatcher(g.cfg.LevelsDir)
	if err != nil {
		return err
	}
	g.watcher = w
	go func() {
		for {
			select {
			case path, ok := <-w.Events:
				if !ok {
					return
				}
				_ = g.screen.PostEvent(tcell.NewEventInterrupt(reloadEvent{path: path}))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				g.logger.Warn("level watcher error", "error", err)
			}
		}
	}()
	return nil
}

// handleEvent processes a single event.
func (g *Game) handleEvent(ctx context.Context, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventInterrupt:
		switch data := ev.Data().(type) {
		case tickEvent:
			g.step(ctx)
		case reloadEvent:
			g.reload(ctx, data.path)
		}
	case *tcell.EventKey:
		g.handleKeyEvent(ctx, ev)
	case *tcell.EventMouse:
		g.handleMouseEvent(ev)
	case *tcell.EventResize:
		g.screen.Sync()
	case nil:
		// The screen was finalized.
		g.running = false
	}
}

// step advances the session by the wall time since the last tick and draws.
func (g *Game) step(ctx context.Context) {
	now := time.Now()
	dt := now.Sub(g.lastTick).Seconds()
	g.lastTick = now

	in := g.pending
	g.pending = Input{}
	res := g.session.Tick(ctx, dt, in)
	g.trackClick(in, res, dt)

	if res.PathErr != nil {
		g.message = "no way there"
	}
	if res.State == StateLevelComplete {
		def := g.session.Level()
		next := g.levels.Next(def.ID)
		g.logger.Info("advancing level", "from", def.ID, "to", next.ID)
		if err := g.loadLevel(ctx, next); err != nil {
			g.message = err.Error()
		} else {
			g.message = fmt.Sprintf("%s complete", def.Name)
		}
	}
	g.render()
}

func (g *Game) render() {
	s := g.session
	def := s.Level()
	g.renderer.Render(ui.View{
		Title:   fmt.Sprintf("%s (%s)", def.Name, def.ID),
		Status:  fmt.Sprintf("%s  %s  node %s", s.State(), s.Sequencer().State(), s.Avatar().Node),
		Message: g.message,
		Graph:   s.Graph(),
		Final:   walkgraph.NodeID(def.Final),
		Avatar:  s.Avatar(),
		Pivots:  s.Pivots(),
		Marker:  g.marker,
	})
}

// trackClick shows the marker on a routed click, fades it while the avatar
// walks and hides it once the route is done.
func (g *Game) trackClick(in Input, res TickResult, dt float64) {
	if res.Reset {
		g.marker.Hide()
		return
	}
	walking := g.session.Sequencer().Walking()
	if in.Click != nil && res.Route != nil && walking {
		g.marker.Show(*in.Click)
	}
	g.marker.Fade(dt, walking)
	for _, ev := range res.Events {
		if ev.Kind == motion.EventPathComplete {
			g.marker.Hide()
		}
	}
}

// handleKeyEvent processes keyboard input. Simulation input is queued for the
// next tick.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		g.running = false

	case tcell.KeyLeft:
		g.pending.Rotate = -1
	case tcell.KeyRight:
		g.pending.Rotate = 1

	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			g.running = false
		case 'r', 'R':
			g.pending.Reset = true
			g.message = helpText
		case 'n', 'N':
			g.switchLevel(ctx, g.levels.Next(g.session.Level().ID))
		case 'p', 'P':
			g.switchLevel(ctx, g.levels.Previous(g.session.Level().ID))
		}
	}
}

// handleMouseEvent turns a primary-button press on a node into a click.
func (g *Game) handleMouseEvent(ev *tcell.EventMouse) {
	down := ev.Buttons()&tcell.Button1 != 0
	pressed := down && !g.mouseDown
	g.mouseDown = down
	if !pressed {
		return
	}
	x, y := ev.Position()
	if id, ok := g.renderer.NodeAt(x, y); ok {
		g.pending.Click = &id
	}
}

func (g *Game) switchLevel(ctx context.Context, def *level.Def) {
	if err := g.loadLevel(ctx, def); err != nil {
		g.message = err.Error()
		return
	}
	g.message = helpText
}

func (g *Game) loadLevel(ctx context.Context, def *level.Def) error {
	s, err := NewSession(ctx, def, g.cfg.Motion, g.logger)
	if err != nil {
		return err
	}
	g.session = s
	g.pending = Input{}
	g.marker.Hide()
	g.logger.Info("level loaded", "level", def.ID)
	return nil
}

// reload re-reads the levels directory and restarts the current level from
// its new definition. A broken file keeps the old levels in play.
func (g *Game) reload(ctx context.Context, path string) {
	levels, err := level.LoadDirRegistry(g.cfg.LevelsDir)
	if err != nil {
		g.logger.Warn("level reload failed", "path", path, "error", err)
		g.message = fmt.Sprintf("reload failed: %v", err)
		return
	}
	g.levels = levels

	current := levels.GetByID(g.session.Level().ID)
	if current == nil {
		current = levels.First()
	}
	if err := g.loadLevel(ctx, current); err != nil {
		g.message = err.Error()
		return
	}
	g.logger.Info("levels reloaded", "path", path, "count", levels.Count())
	g.message = fmt.Sprintf("reloaded %s", current.ID)
}
