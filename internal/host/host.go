// Package host drives a control through its lifecycle: it mounts the control
// on a container, feeds it datasets from a source, and writes the container
// to a sink after every update.
//
// Updates are triggered by file changes (watch mode), by a cron schedule, or
// once at startup. All lifecycle calls happen on the goroutine running Run, so
// the control never sees concurrent calls.
package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync/atomic"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"recordtimeline/internal/config"
	"recordtimeline/internal/control"
	"recordtimeline/internal/dataset"
)

// Options controls when the host updates the control.
type Options struct {
	// ConfigPath is watched for layout size changes when non-empty.
	ConfigPath        string
	Watch             bool
	RefreshSchedule   string
	Debounce          time.Duration
	MinUpdateInterval time.Duration
	ReadAttempts      uint
	ReadDelay         time.Duration
	Width             int
	Height            int
}

// OptionsFromConfig returns the host options carried by cfg.
func OptionsFromConfig(cfg config.Config, configPath string) Options {
	return Options{
		ConfigPath:        configPath,
		Watch:             cfg.Host.Watch,
		RefreshSchedule:   cfg.Host.RefreshSchedule,
		Debounce:          cfg.Host.Debounce,
		MinUpdateInterval: cfg.Host.MinUpdateInterval,
		ReadAttempts:      cfg.Host.ReadAttempts,
		ReadDelay:         cfg.Host.ReadDelay,
		Width:             cfg.Layout.Width,
		Height:            cfg.Layout.Height,
	}
}

type trigger int

const (
	dataChanged trigger = iota
	configChanged
	scheduled
)

func (t trigger) String() string {
	switch t {
	case dataChanged:
		return "data"
	case configChanged:
		return "config"
	default:
		return "schedule"
	}
}

// Host runs one control against one source.
type Host struct {
	opts Options
	src  dataset.Source
	ctrl control.Control
	sink Sink
	log  zerolog.Logger

	container   *control.Element
	trackResize bool
	last        []byte
	updates     atomic.Int64

	triggers chan trigger
}

// New returns a host. Nothing happens until Run.
func New(opts Options, src dataset.Source, ctrl control.Control, sink Sink, log zerolog.Logger) *Host {
	container := control.NewElement("container")
	container.Resize(opts.Width, opts.Height)
	return &Host{
		opts:      opts,
		src:       src,
		ctrl:      ctrl,
		sink:      sink,
		log:       log.With().Str("component", "host").Logger(),
		container: container,
		triggers:  make(chan trigger, 1),
	}
}

// TrackContainerResize implements control.Mode.
func (h *Host) TrackContainerResize(enabled bool) { h.trackResize = enabled }

// Container returns the element the control is mounted on.
func (h *Host) Container() *control.Element { return h.container }

// Updates returns how many UpdateView calls have been made.
func (h *Host) Updates() int { return int(h.updates.Load()) }

// Run mounts the control, performs the initial load and, when watching or
// scheduling, keeps updating until ctx is done. An error from the initial load
// or update is returned; later errors are logged and the previous output is
// kept.
func (h *Host) Run(ctx context.Context) error {
	if err := h.ctrl.Init(h.context(dataset.Loading()), h.outputsChanged, map[string]string{}, h.container); err != nil {
		return fmt.Errorf("init control: %w", err)
	}
	defer h.ctrl.Destroy()

	// The control sees the dataset as loading until the first fetch completes.
	if err := h.update(dataset.Loading()); err != nil {
		return err
	}
	if err := h.refresh(ctx); err != nil {
		return err
	}

	if !h.opts.Watch && h.opts.RefreshSchedule == "" {
		return nil
	}

	if h.opts.Watch {
		w, err := newWatcher(h.watchTargets(), h.opts.Debounce, h.enqueue, h.log)
		if err != nil {
			return err
		}
		go w.run(ctx)
	}
	if h.opts.RefreshSchedule != "" {
		stop, err := h.schedule(h.opts.RefreshSchedule)
		if err != nil {
			return err
		}
		defer stop()
	}
	return h.loop(ctx)
}

func (h *Host) loop(ctx context.Context) error {
	limit := rate.Inf
	if h.opts.MinUpdateInterval > 0 {
		limit = rate.Every(h.opts.MinUpdateInterval)
	}
	limiter := rate.NewLimiter(limit, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-h.triggers:
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			h.log.Debug().Stringer("trigger", t).Msg("update triggered")
			var err error
			if width, height, changed := h.reloadConfig(t); changed {
				err = h.Resize(ctx, width, height)
			} else {
				err = h.refresh(ctx)
			}
			if err != nil {
				h.log.Error().Err(err).Stringer("trigger", t).Msg("update failed; keeping previous output")
			}
		}
	}
}

// enqueue requests an update. Requests made while one is pending coalesce,
// except that a config change is never dropped in favour of a data change.
func (h *Host) enqueue(t trigger) {
	select {
	case h.triggers <- t:
		return
	default:
	}
	if t != configChanged {
		return
	}
	select {
	case <-h.triggers:
	default:
	}
	select {
	case h.triggers <- t:
	default:
	}
}

// refresh loads the dataset, updates the control and flushes the output.
func (h *Host) refresh(ctx context.Context) error {
	ds, err := h.load(ctx)
	if err != nil {
		return err
	}
	if err := h.update(ds); err != nil {
		return err
	}
	return h.flush()
}

func (h *Host) load(ctx context.Context) (*dataset.Dataset, error) {
	attempts := h.opts.ReadAttempts
	if attempts == 0 {
		attempts = 1
	}
	ds, err := retry.DoWithData(
		func() (*dataset.Dataset, error) {
			ds, err := h.src.Load(ctx)
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, context.Canceled) {
				return nil, retry.Unrecoverable(err)
			}
			return ds, err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(h.opts.ReadDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			h.log.Debug().Uint("attempt", n+1).Err(err).Str("path", h.src.Path()).Msg("dataset read failed; retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", h.src.Path(), err)
	}
	return ds, nil
}

func (h *Host) update(ds *dataset.Dataset) error {
	h.updates.Add(1)
	if err := h.ctrl.UpdateView(h.context(ds)); err != nil {
		return fmt.Errorf("update view: %w", err)
	}
	return nil
}

func (h *Host) flush() error {
	out := h.container.Bytes()
	if len(out) == 0 {
		h.log.Warn().Msg("nothing rendered; no output written")
		return nil
	}
	if bytes.Equal(out, h.last) {
		h.log.Debug().Msg("output unchanged; skipping write")
		return nil
	}
	if err := h.sink.Write(out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	h.last = out
	return nil
}

// Resize changes the container size and updates the view. A control that
// does not track resizes keeps the size it was mounted with.
func (h *Host) Resize(ctx context.Context, width, height int) error {
	if h.trackResize {
		h.log.Info().Int("width", width).Int("height", height).Msg("container resized")
		h.container.Resize(width, height)
	} else {
		h.log.Debug().Msg("control does not track resizes; size ignored")
	}
	return h.refresh(ctx)
}

// reloadConfig re-reads the config file after a change and reports the new
// layout size when it differs from the container's.
func (h *Host) reloadConfig(t trigger) (width, height int, changed bool) {
	if t != configChanged || h.opts.ConfigPath == "" {
		return 0, 0, false
	}
	cfg, err := config.Load(h.opts.ConfigPath)
	if err != nil {
		h.log.Warn().Err(err).Str("path", h.opts.ConfigPath).Msg("config reload failed")
		return 0, 0, false
	}
	if cfg.Layout.Width == h.container.Width() && cfg.Layout.Height == h.container.Height() {
		h.log.Debug().Msg("layout unchanged; other config changes apply on restart")
		return 0, 0, false
	}
	return cfg.Layout.Width, cfg.Layout.Height, true
}

func (h *Host) context(ds *dataset.Dataset) *control.Context {
	return &control.Context{Dataset: ds, Mode: h}
}

func (h *Host) outputsChanged() {
	h.log.Debug().Int("outputs", len(h.ctrl.Outputs())).Msg("control reported new outputs")
}

func (h *Host) watchTargets() map[string]trigger {
	targets := map[string]trigger{h.src.Path(): dataChanged}
	if h.opts.ConfigPath != "" {
		targets[h.opts.ConfigPath] = configChanged
	}
	return targets
}
