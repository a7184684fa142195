package siteuri

import "strings"

const (
	zenodoRecordsPrefix  = "https://zenodo.org/records/"
	sandboxRecordsPrefix = "https://sandbox.zenodo.org/records/"
)

// RecordsResolver is the historical strategy. Besides sha1:// it accepts
// zenodo.org record file URLs (https://zenodo.org/records/<id>/files/<path>,
// and the sandbox host) and passes any other http(s) URL through unchanged.
type RecordsResolver struct {
	BaseURL string
}

var _ Resolver = (*RecordsResolver)(nil)

// Resolve implements Resolver.
func (s *RecordsResolver) Resolve(siteURI, zone string) Resolved {
	if r, ok := resolveSHA1(s.BaseURL, siteURI, zone); ok {
		return r
	}

	if strings.HasPrefix(siteURI, zenodoRecordsPrefix) || strings.HasPrefix(siteURI, sandboxRecordsPrefix) {
		// https: / "" / host / records / <id> / files / <path...>
		parts := strings.Split(siteURI, "/")
		if len(parts) < 6 || parts[5] != "files" {
			return invalid()
		}
		sandbox := strings.HasPrefix(siteURI, sandboxRecordsPrefix)
		filePath := strings.Join(parts[6:], "/")
		return Resolved{URL: zenodoURL(s.BaseURL, sandbox, parts[4], filePath), Valid: true}
	}

	if strings.HasPrefix(siteURI, "https://") || strings.HasPrefix(siteURI, "http://") {
		return Resolved{URL: siteURI, Valid: true}
	}

	return invalid()
}
