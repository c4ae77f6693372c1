package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/coreos/go-systemd/v22/daemon"

	"notifykit/internal/config"
	"notifykit/internal/eventbus"
	"notifykit/internal/httpserver"
	"notifykit/internal/notify"
	"notifykit/internal/runtime/supervisor"
	"notifykit/internal/view"
	logx "notifykit/pkg/logx"
)

type App struct {
	cfgm *config.Manager

	log  logx.Logger
	logs *logx.Service
	bus  eventbus.Bus

	tmpl     *view.Templates
	renderer notify.Renderer
	http     *httpserver.Server

	sup     *supervisor.Supervisor
	updates chan *config.Config

	mu      sync.Mutex
	applied *config.Config

	stats renderStats
}

type renderStats struct {
	added    atomic.Uint64
	rendered atomic.Uint64
	failed   atomic.Uint64
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if _, err := mapHTTPConfig(cfg); err != nil {
		return nil, err
	}

	logs, log := logx.New(mapLoggingConfig(cfg))

	tmpl := view.NewTemplates(cfg.Views.Dir)
	a := &App{
		cfgm:     cfgm,
		log:      log.With(logx.String("comp", "app")),
		logs:     logs,
		bus:      eventbus.New(),
		tmpl:     tmpl,
		renderer: view.Chain(tmpl, view.NewRegistry()),
		applied:  cfg,
	}
	a.http = httpserver.New(
		httpserver.Handler(a.NewStore, a.health, log.With(logx.String("comp", "preview"))),
		log.With(logx.String("comp", "http")),
	)
	return a, nil
}

// NewStore returns an empty store configured from the current config. Call it
// once per logical request.
func (a *App) NewStore() *notify.Store {
	cfg := a.cfgm.Get()
	return notify.New(notify.DefaultsFrom(a.cfgm), a.renderer,
		notify.WithLogger(a.log.With(logx.String("comp", "notify"))),
		notify.WithBus(a.bus),
		notify.WithStrictFilter(cfg != nil && cfg.Notify.StrictFilter),
	)
}

// Renderer is the view chain every store renders through.
func (a *App) Renderer() notify.Renderer { return a.renderer }

func (a *App) Config() *config.Config { return a.cfgm.Get() }

// HTTPAddr is the listen address of the preview server, or "" when disabled.
func (a *App) HTTPAddr() string { return a.http.Addr() }

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	httpCfg, err := mapHTTPConfig(a.cfgm.Get())
	if err != nil {
		return err
	}

	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		_, err := mapHTTPConfig(cfg)
		return err
	})
	a.updates = a.cfgm.Subscribe(4)

	a.sup.GoRestart("config.watch", a.cfgm.Watch)
	a.sup.Go0("config.apply", a.applyLoop)
	events, unsubscribe := a.bus.Subscribe(256, notify.EventMessageAdded, notify.EventRendered)
	a.sup.Go0("notify.audit", func(ctx context.Context) {
		defer unsubscribe()
		a.auditLoop(ctx, events)
	})

	a.http.Apply(a.sup.Context(), httpCfg)
	a.notifySystemd(daemon.SdNotifyReady)
	a.log.Info("notifyd started",
		logx.String("config", a.cfgm.Path()),
		logx.String("default_message_type", a.cfgm.Lookup(notify.KeyDefaultMessageType)),
		logx.String("view", a.cfgm.Lookup(notify.KeyView)),
	)
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	a.notifySystemd(daemon.SdNotifyStopping)
	a.http.Stop(ctx)
	a.cfgm.Unsubscribe(a.updates)
	var err error
	if a.sup != nil {
		err = a.sup.Stop(ctx)
	}
	a.log.Info("notifyd stopped")
	_ = a.logs.Close()
	return err
}

func (a *App) applyLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-a.updates:
			if !ok {
				return
			}
			a.apply(ctx, cfg)
		}
	}
}

// apply pushes a reloaded config into the live components.
func (a *App) apply(ctx context.Context, cfg *config.Config) {
	if cfg == nil {
		return
	}
	a.mu.Lock()
	prev := a.applied
	a.applied = cfg
	a.mu.Unlock()

	changed, attrs := config.SummarizeConfigChange(prev, cfg)
	// Template files change without the config changing, so any publish reloads them.
	if !a.tmpl.SetDir(cfg.Views.Dir) {
		a.tmpl.Reload()
	}
	if len(changed) == 0 {
		return
	}
	a.log.Info("config applied", append([]logx.Field{logx.Strings("sections", changed)}, attrs...)...)

	for _, section := range changed {
		switch section {
		case "logging":
			a.logs.Apply(mapLoggingConfig(cfg))
		case "http":
			httpCfg, err := mapHTTPConfig(cfg)
			if err != nil {
				a.log.Warn("http config rejected", logx.Err(err))
				continue
			}
			a.http.Apply(ctx, httpCfg)
		}
	}
}

// auditLoop tallies store events for /healthz and surfaces render failures.
func (a *App) auditLoop(ctx context.Context, events <-chan eventbus.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			a.record(e)
		}
	}
}

func (a *App) record(e eventbus.Event) {
	switch d := e.Data.(type) {
	case notify.MessageAdded:
		a.stats.added.Add(1)
	case notify.Rendered:
		if d.Err != nil {
			a.stats.failed.Add(1)
			a.log.Debug("render failure recorded", logx.String("view", d.View), logx.Err(d.Err))
			return
		}
		a.stats.rendered.Add(1)
	}
}

func (a *App) health() any {
	out := map[string]any{
		"messages_added": a.stats.added.Load(),
		"renders":        a.stats.rendered.Load(),
		"render_errors":  a.stats.failed.Load(),
	}
	if a.sup != nil {
		out["supervisor"] = a.sup.Snapshot()
	}
	return out
}

func mapLoggingConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapHTTPConfig(cfg *config.Config) (httpserver.Config, error) {
	if cfg == nil {
		return httpserver.Config{}, fmt.Errorf("config not loaded")
	}
	t, err := cfg.HTTP.Timeouts()
	if err != nil {
		return httpserver.Config{}, err
	}
	return httpserver.Config{
		Enabled:      cfg.HTTP.Enabled,
		Addr:         cfg.HTTP.Addr,
		ReadTimeout:  t.Read,
		WriteTimeout: t.Write,
		IdleTimeout:  t.Idle,
		RatePerSec:   cfg.HTTP.RatePerSec,
		Burst:        cfg.HTTP.Burst,
	}, nil
}
