package handlers

import (
	"net/http"

	"iftarspot/backend/internal/geo"
	"iftarspot/backend/internal/geocode"
)

type inspectLinkRequest struct {
	MapLink string `json:"mapLink" validate:"max=2048"`
}

type inspectLinkResponse struct {
	geo.LinkInfo
	Place    *geocode.Place `json:"place,omitempty"`
	Warnings []string       `json:"warnings"`
}

// InspectMapLink reports what the map would do with a link before the spot
// is submitted.
func (h *Handler) InspectMapLink(w http.ResponseWriter, r *http.Request) {
	var req inspectLinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	info := geo.InspectLink(req.MapLink)
	warnings := make([]string, 0, 2)
	switch info.Kind {
	case geo.LinkShort:
		warnings = append(warnings, "short links cannot be placed on the map; open the link and copy the full address")
	case geo.LinkMaps, geo.LinkUnknown:
		warnings = append(warnings, "no coordinates found in link; the spot will not appear on the map")
	}
	if info.Resolvable && !info.InRange {
		warnings = append(warnings, "coordinates are outside the valid latitude/longitude range")
	}
	resp := inspectLinkResponse{LinkInfo: info, Warnings: warnings}
	if info.Resolvable && info.InRange && h.geocoder != nil {
		ctx, cancel := h.withTimeout(r.Context())
		defer cancel()
		place, err := h.geocoder.Reverse(ctx, *info.Coordinate)
		if err != nil {
			h.loggerForRequest(r).Warn("action", "action", "inspect_map_link", "status", "geocode_error", "error", err)
		} else {
			resp.Place = &place
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	_, version := h.listings.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "listingsVersion": version})
}
