package route

import "net/url"

// Router exposes the current Route of a Location and navigates it.
type Router struct {
	loc Location
}

// NewRouter creates a Router reading from loc.
func NewRouter(loc Location) *Router {
	return &Router{loc: loc}
}

// Route returns the route for the current location.
func (r *Router) Route() Route {
	return Parse(r.loc.Current())
}

// SetRoute navigates to the path of rt.
func (r *Router) SetRoute(rt Route) error {
	return r.loc.Navigate(Path(rt))
}

// OnChange calls fn with the parsed route after every navigation.
func (r *Router) OnChange(fn func(Route)) (unsubscribe func()) {
	return r.loc.Subscribe(func(u *url.URL) {
		fn(Parse(u))
	})
}
