package spotmap

import (
	"bytes"
	"encoding/json"
	"testing"

	"iftarspot/backend/internal/geo"

	"github.com/PuerkitoBio/goquery"
)

func renderDoc(t *testing.T, p *Page) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestPageRendersMarkersAndState(t *testing.T) {
	page := NewPage("Iftar map")
	r := NewRenderer(page)
	geocoded := geocodedFixture()
	r.Install(Project(geocoded), ComputeViewport(geocoded))
	r.ShowUser(geo.Coordinate{Lat: 23.7, Lng: 90.4})

	doc := renderDoc(t, page)
	if got := doc.Find("li.spot").Length(); got != len(geocoded) {
		t.Fatalf("expected %d listed spots, got %d", len(geocoded), got)
	}
	raw, ok := doc.Find("#map").Attr("data-state")
	if !ok {
		t.Fatalf("map element has no state")
	}
	var state pageState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(state.Markers) != len(geocoded)+1 {
		t.Fatalf("expected spot markers plus user marker, got %d", len(state.Markers))
	}
	if state.Fit == nil || state.Fit.MaxZoom != FitMaxZoom {
		t.Fatalf("expected fit with max zoom, got %+v", state.Fit)
	}
	if state.FlyTo == nil || state.FlyTo.Center != (geo.Coordinate{Lat: 23.7, Lng: 90.4}) {
		t.Fatalf("expected fly-to user location, got %+v", state.FlyTo)
	}
	if state.TileURL != TileURL {
		t.Fatalf("unexpected tile url %q", state.TileURL)
	}
}

func TestPageWarningKeepsMarkers(t *testing.T) {
	page := NewPage("Iftar map")
	r := NewRenderer(page)
	r.Install(Project(geocodedFixture()), ComputeViewport(geocodedFixture()))
	page.Warn("Location unavailable")

	doc := renderDoc(t, page)
	if doc.Find(".warning").Text() != "Location unavailable" {
		t.Fatalf("expected warning text, got %q", doc.Find(".warning").Text())
	}
	if doc.Find("li.spot").Length() != len(geocodedFixture()) {
		t.Fatalf("warning must not drop markers")
	}
}

func TestPageEscapesUnsafeLinks(t *testing.T) {
	page := NewPage("Iftar map")
	page.AddMarker(Marker{ID: "x", Popup: Popup{MasjidName: "<b>M</b>", MapLink: "javascript:alert(1)"}})

	doc := renderDoc(t, page)
	href, _ := doc.Find("li.spot a").Attr("href")
	if href == "javascript:alert(1)" {
		t.Fatalf("unsafe href rendered verbatim")
	}
	if doc.Find("li.spot strong b").Length() != 0 {
		t.Fatalf("masjid name was rendered as markup")
	}
}
