package geo

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// LinkKind classifies a pasted map link.
type LinkKind string

const (
	LinkEmpty       LinkKind = "empty"
	LinkCoordinates LinkKind = "coordinates"
	LinkShort       LinkKind = "short_link"
	LinkMaps        LinkKind = "maps"
	LinkUnknown     LinkKind = "unknown"
)

// LinkInfo describes what can be recovered from a map link.
type LinkInfo struct {
	Kind       LinkKind    `json:"kind"`
	Host       string      `json:"host,omitempty"`
	Domain     string      `json:"domain,omitempty"`
	Strategy   string      `json:"strategy,omitempty"`
	Coordinate *Coordinate `json:"coordinate,omitempty"`
	Resolvable bool        `json:"resolvable"`
	InRange    bool        `json:"inRange"`
}

// InspectLink classifies link without any network access. Short links are
// reported as such and never followed.
func InspectLink(link string) LinkInfo {
	link = strings.TrimSpace(link)
	if link == "" {
		return LinkInfo{Kind: LinkEmpty}
	}
	info := LinkInfo{Kind: LinkUnknown}
	info.Host, info.Domain = linkDomain(link)

	if c, name, ok := extract(link); ok {
		info.Kind = LinkCoordinates
		info.Strategy = name
		info.Coordinate = &c
		info.Resolvable = true
		info.InRange = c.InRange()
		return info
	}

	switch {
	case info.Domain == "goo.gl":
		info.Kind = LinkShort
	case isGoogleDomain(info.Domain):
		info.Kind = LinkMaps
	}
	return info
}

func linkDomain(link string) (string, string) {
	raw := link
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host, ""
	}
	return host, domain
}

// isGoogleDomain matches google.com and country variants such as google.com.bd.
func isGoogleDomain(domain string) bool {
	if domain == "" {
		return false
	}
	label, _, _ := strings.Cut(domain, ".")
	return label == "google"
}
