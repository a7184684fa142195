package siteuri

import "strings"

// SchemeResolver is the canonical strategy. It understands
//
//	sha1://<digest>[?...]
//	zenodo://<recordId>/<filePath...>
//	zenodo-sandbox://<recordId>/<filePath...>
type SchemeResolver struct {
	BaseURL string
}

var _ Resolver = (*SchemeResolver)(nil)

// Resolve implements Resolver.
func (s *SchemeResolver) Resolve(siteURI, zone string) Resolved {
	if r, ok := resolveSHA1(s.BaseURL, siteURI, zone); ok {
		return r
	}

	var (
		rest    string
		sandbox bool
	)
	switch {
	case strings.HasPrefix(siteURI, "zenodo://"):
		rest = strings.TrimPrefix(siteURI, "zenodo://")
	case strings.HasPrefix(siteURI, "zenodo-sandbox://"):
		rest = strings.TrimPrefix(siteURI, "zenodo-sandbox://")
		sandbox = true
	default:
		return invalid()
	}

	recordID, filePath, _ := strings.Cut(rest, "/")
	if recordID == "" {
		return invalid()
	}
	return Resolved{URL: zenodoURL(s.BaseURL, sandbox, recordID, filePath), Valid: true}
}
