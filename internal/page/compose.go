// Package page composes and serves the home and site pages. A site page
// visit owns its route, resolved URL, availability probe and build request;
// Compose turns that state into exactly one view.
package page

import (
	"fmt"

	"github.com/ziadkadry99/zen-figurl/internal/buildrequest"
	"github.com/ziadkadry99/zen-figurl/internal/route"
	"github.com/ziadkadry99/zen-figurl/internal/siteuri"
)

// Kind names the view selected for a page.
type Kind string

const (
	KindHome        Kind = "home"
	KindInvalid     Kind = "invalid"
	KindFound       Kind = "found"
	KindNotFound    Kind = "not_found"
	KindUnknownPage Kind = "unknown_page"
)

// Messages shown by the not-found view.
const (
	MessageRequesting = "Requesting build site..."
	MessageRequested  = "Build site requested. Please only submit the request once. Check back in a few minutes."
	MessageError      = "Problem requesting build site"
)

// View is the composed state of a page.
type View struct {
	Kind    Kind       `json:"kind"`
	Page    route.Page `json:"page"`
	SiteURI string     `json:"site_uri,omitempty"`
	SiteURL string     `json:"site_url,omitempty"`
	// Checking is set while the availability probe has not settled.
	Checking bool       `json:"checking,omitempty"`
	Build    *BuildView `json:"build,omitempty"`
}

// BuildView is the build-request part of the not-found view.
type BuildView struct {
	Status       buildrequest.Status `json:"status"`
	CanRequest   bool                `json:"can_request"`
	Message      string              `json:"message,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
}

// ComposeMain selects the view for rt. site is only called for site routes.
func ComposeMain(rt route.Route, site func() View) View {
	switch rt.Page {
	case route.PageHome:
		return View{Kind: KindHome, Page: rt.Page}
	case route.PageSite:
		return site()
	default:
		return View{Kind: KindUnknownPage, Page: rt.Page}
	}
}

// Compose selects the site view: invalid when the URI did not resolve, found
// when the probe found the site, not-found otherwise. It panics if rt is not
// a site route or a valid resolution carries no URL.
func Compose(rt route.Route, resolved siteuri.Resolved, found bool, snap buildrequest.Snapshot) View {
	if !rt.IsSite() {
		panic(fmt.Sprintf("page: unexpected page %q", rt.Page))
	}
	v := View{Page: rt.Page, SiteURI: rt.SiteURI}
	if !resolved.Valid {
		v.Kind = KindInvalid
		return v
	}
	if resolved.URL == "" {
		panic("page: valid site URI resolved to an empty URL")
	}
	v.SiteURL = resolved.URL
	if found {
		v.Kind = KindFound
		return v
	}
	v.Kind = KindNotFound
	b := composeBuild(snap)
	v.Build = &b
	return v
}

func composeBuild(snap buildrequest.Snapshot) BuildView {
	b := BuildView{Status: snap.Status}
	switch snap.Status {
	case buildrequest.StatusNone:
		b.CanRequest = true
	case buildrequest.StatusRequesting:
		b.Message = MessageRequesting
	case buildrequest.StatusRequested:
		b.Message = MessageRequested
	case buildrequest.StatusError:
		b.Message = MessageError
		b.ErrorMessage = snap.ErrorMessage
	default:
		b.Message = fmt.Sprintf("Unexpected build site request status: %s", snap.Status)
	}
	return b
}
