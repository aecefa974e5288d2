package spotmap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	unresolvedLinks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iftarspot_maplink_unresolved",
		Help: "Live listings whose map link yields no coordinate",
	})

	markersInstalled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iftarspot_map_markers",
		Help: "Markers in the most recent map render",
	})
)
