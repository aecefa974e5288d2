package spotmap

import (
	"encoding/json"
	"html/template"
	"io"
	"sort"
	"sync"

	"iftarspot/backend/internal/geo"
)

// Page is a Surface that renders a self-contained Leaflet document.
type Page struct {
	mu          sync.Mutex
	title       string
	tileURL     string
	attribution string
	next        MarkerHandle
	markers     map[MarkerHandle]Marker
	view        pageView
	fit         *pageFit
	flyTo       *pageView
	warnings    []string
	destroyed   bool
}

type pageView struct {
	Center geo.Coordinate `json:"center"`
	Zoom   int            `json:"zoom"`
}

type pageFit struct {
	Bounds  Bounds `json:"bounds"`
	Padding int    `json:"padding"`
	MaxZoom int    `json:"maxZoom"`
}

// pageState is what the embedded script reads.
type pageState struct {
	TileURL     string    `json:"tileUrl"`
	Attribution string    `json:"attribution"`
	View        pageView  `json:"view"`
	Fit         *pageFit  `json:"fit,omitempty"`
	FlyTo       *pageView `json:"flyTo,omitempty"`
	Markers     []Marker  `json:"markers"`
}

// NewPage creates an empty page.
func NewPage(title string) *Page {
	return &Page{
		title:   title,
		markers: make(map[MarkerHandle]Marker),
		view:    pageView{Center: DefaultCenter, Zoom: DefaultZoom},
	}
}

func (p *Page) SetTileLayer(url, attribution string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tileURL = url
	p.attribution = attribution
}

func (p *Page) AddMarker(m Marker) MarkerHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	p.markers[p.next] = m
	return p.next
}

func (p *Page) RemoveMarker(h MarkerHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.markers, h)
}

func (p *Page) FlyTo(center geo.Coordinate, zoom int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flyTo = &pageView{Center: center, Zoom: zoom}
}

func (p *Page) SetView(center geo.Coordinate, zoom int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view = pageView{Center: center, Zoom: zoom}
	p.fit = nil
}

func (p *Page) FitBounds(b Bounds, padding, maxZoom int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fit = &pageFit{Bounds: b, Padding: padding, MaxZoom: maxZoom}
}

func (p *Page) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.markers = make(map[MarkerHandle]Marker)
	p.fit = nil
	p.flyTo = nil
	p.destroyed = true
}

// Warn adds a user-visible notice above the map.
func (p *Page) Warn(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.warnings = append(p.warnings, message)
}

// Markers returns the markers currently on the page in placement order.
func (p *Page) Markers() []Marker {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.orderedMarkers()
}

func (p *Page) orderedMarkers() []Marker {
	handles := make([]int, 0, len(p.markers))
	for h := range p.markers {
		handles = append(handles, int(h))
	}
	sort.Ints(handles)
	out := make([]Marker, 0, len(handles))
	for _, h := range handles {
		out = append(out, p.markers[MarkerHandle(h)])
	}
	return out
}

type pageData struct {
	Title     string
	State     string
	Markers   []Marker
	Warnings  []string
	Destroyed bool
}

// Render writes the HTML document.
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	markers := p.orderedMarkers()
	state := pageState{
		TileURL:     p.tileURL,
		Attribution: p.attribution,
		View:        p.view,
		Fit:         p.fit,
		FlyTo:       p.flyTo,
		Markers:     markers,
	}
	data := pageData{
		Title:     p.title,
		Markers:   markers,
		Warnings:  append([]string(nil), p.warnings...),
		Destroyed: p.destroyed,
	}
	p.mu.Unlock()

	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	data.State = string(raw)
	return pageTemplate.Execute(w, data)
}

var pageTemplate = template.Must(template.New("map").Parse(`<!doctype html>
<html lang="bn">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<style>#map{height:70vh}.warning{padding:8px;background:#fef3c7}</style>
</head>
<body>
{{range .Warnings}}<div class="warning" role="alert">{{.}}</div>
{{end}}
{{if not .Destroyed}}<div id="map" data-state="{{.State}}"></div>
<ul id="spots">
{{range .Markers}}{{if not .User}}<li class="spot" data-id="{{.ID}}"><strong>{{.Popup.MasjidName}}</strong> {{.Popup.Area}}{{if .Popup.Date}} ({{.Popup.Date}}){{end}} <a href="{{.Popup.MapLink}}" rel="noopener">map</a></li>
{{end}}{{end}}</ul>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script>
(function () {
  var el = document.getElementById('map');
  var st = JSON.parse(el.dataset.state);
  var map = L.map(el).setView([st.view.center.lat, st.view.center.lng], st.view.zoom);
  L.tileLayer(st.tileUrl, {attribution: st.attribution}).addTo(map);
  st.markers.forEach(function (m) {
    var mk = L.marker([m.position.lat, m.position.lng]).addTo(map);
    var div = document.createElement('div');
    var b = document.createElement('strong');
    b.textContent = m.popup.masjidName;
    div.appendChild(b);
    if (!m.user) {
      div.appendChild(document.createElement('br'));
      div.appendChild(document.createTextNode([m.popup.area, m.popup.date, (m.popup.items || []).join(', ')].filter(Boolean).join(' · ')));
    }
    mk.bindPopup(div);
  });
  if (st.fit) {
    map.fitBounds([[st.fit.bounds.southWest.lat, st.fit.bounds.southWest.lng], [st.fit.bounds.northEast.lat, st.fit.bounds.northEast.lng]], {padding: [st.fit.padding, st.fit.padding], maxZoom: st.fit.maxZoom});
  }
  if (st.flyTo) {
    map.flyTo([st.flyTo.center.lat, st.flyTo.center.lng], st.flyTo.zoom);
  }
})();
</script>
{{end}}
</body>
</html>
`))
