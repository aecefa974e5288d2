package handlers

import (
	"bytes"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"iftarspot/backend/internal/geo"
	"iftarspot/backend/internal/locate"
	"iftarspot/backend/internal/spotmap"
)

const mapPageTitle = "Iftar spots map"

// Map returns markers and viewport for the active listings matching q.
func (h *Handler) Map(w http.ResponseWriter, r *http.Request) {
	result := h.view.Build(h.today(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, result)
}

// MapPage renders the Leaflet page. A user marker is placed from lat/lng, or
// from a server-side lookup when locate=1. A failed lookup only adds a
// warning; the spot markers stay.
func (h *Handler) MapPage(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	result := h.view.Build(h.today(), r.URL.Query().Get("q"))

	page := spotmap.NewPage(mapPageTitle)
	renderer := spotmap.NewRenderer(page)
	renderer.Install(result.Markers, result.Viewport)

	if pos, ok := userPositionFromQuery(r); ok {
		renderer.ShowUser(pos)
	} else if queryBool(r, "locate") {
		pos, err := h.locateCaller(r)
		if err != nil {
			kind := locate.Classify(err)
			logger.Warn("action", "action", "map_locate", "status", string(kind), "error", err)
			page.Warn(kind.Message())
		} else {
			renderer.ShowUser(pos)
		}
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		logger.Error("action", "action", "map_page", "status", "render_error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render map")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type locateResponse struct {
	Position geo.Coordinate `json:"position"`
	Zoom     int            `json:"zoom"`
}

type locateErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Locate resolves the caller's approximate position.
func (h *Handler) Locate(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	pos, err := h.locateCaller(r)
	if err != nil {
		kind := locate.Classify(err)
		status := http.StatusBadGateway
		switch {
		case kind == locate.KindUnavailable:
			status = http.StatusServiceUnavailable
		case errors.Is(err, locate.ErrTimeout):
			status = http.StatusGatewayTimeout
		}
		logger.Warn("action", "action", "locate", "status", string(kind), "error", err)
		writeJSON(w, status, locateErrorResponse{Error: err.Error(), Kind: string(kind), Message: kind.Message()})
		return
	}
	writeJSON(w, http.StatusOK, locateResponse{Position: pos, Zoom: spotmap.LocateZoom})
}

func (h *Handler) locateCaller(r *http.Request) (geo.Coordinate, error) {
	opts := locate.DefaultOptions
	if h.cfg != nil && h.cfg.Locate.Timeout > 0 {
		opts.Timeout = h.cfg.Locate.Timeout
	}
	ctx := locate.WithClientIP(r.Context(), r.RemoteAddr)
	return locate.Locate(ctx, h.locator, opts)
}

func userPositionFromQuery(r *http.Request) (geo.Coordinate, bool) {
	q := r.URL.Query()
	lat, okLat := parseQueryFloat(q.Get("lat"))
	lng, okLng := parseQueryFloat(q.Get("lng"))
	if !okLat || !okLng {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Lat: lat, Lng: lng}, true
}

func parseQueryFloat(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
