package logfields

import "log/slog"

// Canonical log field names shared across packages.
const (
	KeySiteURI     = "site_uri"
	KeyKacheryZone = "kachery_zone"
	KeySiteURL     = "site_url"
	KeyVisitID     = "visit_id"
	KeyStatus      = "status"
	KeyHTTPStatus  = "http_status"
	KeyErrClass    = "err_class"
	KeyDispatchID  = "dispatch_id"
	KeyWorkflow    = "workflow"
	KeyDurationMS  = "duration_ms"
	KeyError       = "error"
)

func SiteURI(u string) slog.Attr      { return slog.String(KeySiteURI, u) }
func KacheryZone(z string) slog.Attr  { return slog.String(KeyKacheryZone, z) }
func SiteURL(u string) slog.Attr      { return slog.String(KeySiteURL, u) }
func VisitID(id string) slog.Attr     { return slog.String(KeyVisitID, id) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func HTTPStatus(code int) slog.Attr   { return slog.Int(KeyHTTPStatus, code) }
func ErrClass(c string) slog.Attr     { return slog.String(KeyErrClass, c) }
func DispatchID(id string) slog.Attr  { return slog.String(KeyDispatchID, id) }
func Workflow(name string) slog.Attr  { return slog.String(KeyWorkflow, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
