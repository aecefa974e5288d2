package mapexport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"iftarspot/backend/internal/spotmap"
)

const (
	LatestKey   = "map/markers-latest.geojson"
	contentType = "application/geo+json"
)

// Uploader stores an object and returns its public URL.
type Uploader interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type Exporter struct {
	uploader Uploader
	logger   *slog.Logger
	now      func() time.Time
}

func NewExporter(uploader Uploader, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{uploader: uploader, logger: logger, now: time.Now}
}

// Export uploads the marker set as the latest export and as a copy keyed by
// the listing day. It returns the latest object's URL.
func (e *Exporter) Export(ctx context.Context, result spotmap.Result) (string, error) {
	body, err := json.Marshal(Build(result.Markers))
	if err != nil {
		return "", err
	}
	day := result.Today
	if day == "" {
		day = e.now().UTC().Format("2006-01-02")
	}
	dated := fmt.Sprintf("map/%s/markers-%d.geojson", day, e.now().Unix())

	if _, err := e.uploader.PutObject(ctx, dated, contentType, body); err != nil {
		e.logger.Error("action", "action", "mapexport.upload", "status", "error", "key", dated, "error", err)
		return "", err
	}
	url, err := e.uploader.PutObject(ctx, LatestKey, contentType, body)
	if err != nil {
		e.logger.Error("action", "action", "mapexport.upload", "status", "error", "key", LatestKey, "error", err)
		return "", err
	}
	e.logger.Info("action", "action", "mapexport.upload", "status", "ok", "markers", len(result.Markers), "url", url)
	return url, nil
}
