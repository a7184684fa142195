// Package route maps navigation locations to typed routes and back.
package route

import (
	"net/url"
)

// Page identifies a route variant.
type Page string

const (
	PageHome Page = "home"
	PageSite Page = "site"
)

// Navigable paths.
const (
	HomePath = "/home"
	SitePath = "/s"
)

// Route is the parsed form of a location. SiteURI and KacheryZone are only
// meaningful when Page is PageSite; an empty KacheryZone means the zone was
// not given.
type Route struct {
	Page        Page   `json:"page"`
	SiteURI     string `json:"site_uri,omitempty"`
	KacheryZone string `json:"kachery_zone,omitempty"`
}

// Home returns the home route.
func Home() Route { return Route{Page: PageHome} }

// Site returns a site route for the given URI and zone.
func Site(siteURI, zone string) Route {
	return Route{Page: PageSite, SiteURI: siteURI, KacheryZone: zone}
}

// IsSite reports whether r is a site route.
func (r Route) IsSite() bool { return r.Page == PageSite }

// Parse converts a location into a Route. Unknown paths yield the home route.
// The site URI is passed through unvalidated.
func Parse(u *url.URL) Route {
	if u == nil {
		return Home()
	}
	switch u.Path {
	case SitePath:
		q := u.Query()
		return Site(q.Get("site"), q.Get("zone"))
	default:
		return Home()
	}
}

// Path converts a Route into a navigable path with query string.
func Path(r Route) string {
	if r.Page != PageSite {
		return HomePath
	}
	q := url.Values{}
	q.Set("site", r.SiteURI)
	if r.KacheryZone != "" {
		q.Set("zone", r.KacheryZone)
	}
	return SitePath + "?" + q.Encode()
}
