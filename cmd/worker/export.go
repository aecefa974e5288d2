package main

import (
	"context"
	"log/slog"
	"time"

	"iftarspot/backend/internal/browse"
	"iftarspot/backend/internal/spotmap"
)

type refresher interface {
	Refresh(ctx context.Context) error
}

type exporter interface {
	Export(ctx context.Context, result spotmap.Result) (string, error)
}

type worker struct {
	store    refresher
	view     *spotmap.View
	exporter exporter
	zone     *time.Location
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func (w *worker) run(ctx context.Context) {
	for {
		if err := w.exportOnce(ctx); err != nil {
			w.logger.Error("export_failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.interval):
		}
	}
}

// exportOnce reloads the listing and publishes the current marker set.
func (w *worker) exportOnce(ctx context.Context) error {
	if err := w.store.Refresh(ctx); err != nil {
		return err
	}
	now := time.Now
	if w.now != nil {
		now = w.now
	}
	result := w.view.Build(browse.Today(now(), w.zone), "")
	url, err := w.exporter.Export(ctx, result)
	if err != nil {
		return err
	}
	w.logger.Info("export_done", "markers", len(result.Markers), "url", url)
	return nil
}
