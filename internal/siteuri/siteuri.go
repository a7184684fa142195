// Package siteuri maps site URIs (content hashes and archive records) to the
// URLs where their built sites are hosted.
package siteuri

import (
	"fmt"
	"strings"
)

// DefaultZone is the kachery zone used when none is given.
const DefaultZone = "default"

// DefaultBaseURL is the hosting prefix under which built sites are published.
const DefaultBaseURL = "https://neurosift.org/zen-figurl-sites"

// Variant names a resolver strategy.
type Variant string

const (
	// VariantScheme accepts sha1://, zenodo:// and zenodo-sandbox:// URIs.
	VariantScheme Variant = "scheme"
	// VariantRecords accepts sha1://, zenodo.org record URLs and plain http(s) URLs.
	VariantRecords Variant = "records"
)

// Resolved is the outcome of resolving a site URI. URL is empty whenever
// Valid is false.
type Resolved struct {
	URL   string `json:"url,omitempty"`
	Valid bool   `json:"valid"`
}

// Resolver maps a site URI and kachery zone to a hosting URL.
// Implementations are pure: the same inputs always yield the same Resolved.
type Resolver interface {
	Resolve(siteURI, zone string) Resolved
}

// NormalizeZone returns zone, or DefaultZone when zone is empty.
func NormalizeZone(zone string) string {
	if zone == "" {
		return DefaultZone
	}
	return zone
}

// New returns the resolver for the given variant. An empty variant selects
// VariantScheme.
func New(variant Variant, baseURL string) (Resolver, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	switch variant {
	case "", VariantScheme:
		return &SchemeResolver{BaseURL: baseURL}, nil
	case VariantRecords:
		return &RecordsResolver{BaseURL: baseURL}, nil
	default:
		return nil, fmt.Errorf("unknown resolver variant %q", variant)
	}
}

func invalid() Resolved { return Resolved{} }

// resolveSHA1 handles sha1://<40 hex chars>[?suffix]. ok reports whether the
// URI used the sha1 scheme at all.
func resolveSHA1(baseURL, siteURI, zone string) (r Resolved, ok bool) {
	const prefix = "sha1://"
	if !strings.HasPrefix(siteURI, prefix) {
		return invalid(), false
	}
	digest, _, _ := strings.Cut(strings.TrimPrefix(siteURI, prefix), "?")
	if len(digest) != 40 {
		return invalid(), true
	}
	return Resolved{
		URL:   fmt.Sprintf("%s/kachery/%s/sha1/%s", baseURL, NormalizeZone(zone), digest),
		Valid: true,
	}, true
}

func zenodoURL(baseURL string, sandbox bool, recordID, filePath string) string {
	kind := "zenodo"
	if sandbox {
		kind = "zenodo-sandbox"
	}
	u := fmt.Sprintf("%s/%s/%s", baseURL, kind, recordID)
	if filePath != "" {
		u += "/" + filePath
	}
	return u
}
