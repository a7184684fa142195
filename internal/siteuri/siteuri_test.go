package siteuri

import (
	"strings"
	"testing"
)

const base = "https://hosting.example.org/sites"

func mustNew(t *testing.T, v Variant) Resolver {
	t.Helper()
	r, err := New(v, base+"/")
	if err != nil {
		t.Fatalf("New(%q): %v", v, err)
	}
	return r
}

func TestNormalizeZone(t *testing.T) {
	if got := NormalizeZone(""); got != DefaultZone {
		t.Errorf("NormalizeZone(\"\") = %q, want %q", got, DefaultZone)
	}
	if got := NormalizeZone("scratch"); got != "scratch" {
		t.Errorf("NormalizeZone(\"scratch\") = %q, want %q", got, "scratch")
	}
}

func TestNewUnknownVariant(t *testing.T) {
	if _, err := New("nope", ""); err == nil {
		t.Error("expected error for unknown variant")
	}
}

func TestNewDefaults(t *testing.T) {
	r, err := New("", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sr, ok := r.(*SchemeResolver)
	if !ok {
		t.Fatalf("New(\"\") returned %T, want *SchemeResolver", r)
	}
	if sr.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", sr.BaseURL, DefaultBaseURL)
	}
}

func TestSHA1AllVariants(t *testing.T) {
	digest := strings.Repeat("a", 40)
	for _, v := range []Variant{VariantScheme, VariantRecords} {
		r := mustNew(t, v)

		got := r.Resolve("sha1://"+digest, "")
		if !got.Valid {
			t.Fatalf("%s: expected valid", v)
		}
		want := base + "/kachery/default/sha1/" + digest
		if got.URL != want {
			t.Errorf("%s: URL = %q, want %q", v, got.URL, want)
		}
		if !strings.Contains(got.URL, "/default/sha1/"+digest) {
			t.Errorf("%s: URL %q lacks default zone path", v, got.URL)
		}

		got = r.Resolve("sha1://"+digest+"?label=site.tgz", "lab")
		if got.URL != base+"/kachery/lab/sha1/"+digest {
			t.Errorf("%s: suffix not discarded or zone ignored: %q", v, got.URL)
		}
	}
}

func TestSHA1HexDigests(t *testing.T) {
	r := mustNew(t, VariantScheme)
	digests := []string{
		"0123456789abcdef0123456789abcdef01234567",
		"ffffffffffffffffffffffffffffffffffffffff",
		"da39a3ee5e6b4b0d3255bfef95601890afd80709",
	}
	for _, h := range digests {
		for _, zone := range []string{"", "z1"} {
			got := r.Resolve("sha1://"+h, zone)
			if !got.Valid {
				t.Errorf("sha1://%s zone=%q: expected valid", h, zone)
				continue
			}
			if !strings.Contains(got.URL, h) || !strings.Contains(got.URL, NormalizeZone(zone)) {
				t.Errorf("URL %q must contain digest and zone %q", got.URL, NormalizeZone(zone))
			}
		}
	}
}

func TestSHA1WrongLength(t *testing.T) {
	r := mustNew(t, VariantScheme)
	for _, n := range []int{0, 1, 39, 41, 64} {
		got := r.Resolve("sha1://"+strings.Repeat("b", n), "")
		if got.Valid || got.URL != "" {
			t.Errorf("length %d: got %+v, want invalid with no URL", n, got)
		}
	}
}

func TestSchemeZenodo(t *testing.T) {
	r := mustNew(t, VariantScheme)
	tests := []struct {
		uri  string
		want Resolved
	}{
		{"zenodo://123/site.tgz", Resolved{URL: base + "/zenodo/123/site.tgz", Valid: true}},
		{"zenodo://123/a/b/site.tar.gz", Resolved{URL: base + "/zenodo/123/a/b/site.tar.gz", Valid: true}},
		{"zenodo-sandbox://77/site.tgz", Resolved{URL: base + "/zenodo-sandbox/77/site.tgz", Valid: true}},
		{"zenodo://123", Resolved{URL: base + "/zenodo/123", Valid: true}},
		{"zenodo://", Resolved{}},
		{"zenodo:///file", Resolved{}},
		{"https://zenodo.org/records/1/files/x", Resolved{}},
		{"https://example.org/site", Resolved{}},
		{"not-a-real-scheme", Resolved{}},
		{"", Resolved{}},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			if got := r.Resolve(tt.uri, "ignored"); got != tt.want {
				t.Errorf("Resolve(%q) = %+v, want %+v", tt.uri, got, tt.want)
			}
		})
	}
}

func TestZenodoSandboxMarking(t *testing.T) {
	r := mustNew(t, VariantScheme)
	prod := r.Resolve("zenodo://42/f", "")
	sand := r.Resolve("zenodo-sandbox://42/f", "")
	if strings.Contains(prod.URL, "zenodo-sandbox") {
		t.Errorf("production URL %q marked as sandbox", prod.URL)
	}
	if !strings.Contains(sand.URL, "/zenodo-sandbox/42/f") {
		t.Errorf("sandbox URL %q not marked as sandbox", sand.URL)
	}
}

func TestRecordsVariant(t *testing.T) {
	r := mustNew(t, VariantRecords)
	tests := []struct {
		uri  string
		want Resolved
	}{
		{"https://zenodo.org/records/99/files/site.tgz", Resolved{URL: base + "/zenodo/99/site.tgz", Valid: true}},
		{"https://sandbox.zenodo.org/records/5/files/d/site.tgz", Resolved{URL: base + "/zenodo-sandbox/5/d/site.tgz", Valid: true}},
		{"https://zenodo.org/records/99/preview/site.tgz", Resolved{}},
		{"https://zenodo.org/records/99", Resolved{}},
		{"https://example.org/my-site", Resolved{URL: "https://example.org/my-site", Valid: true}},
		{"http://localhost:8000/site", Resolved{URL: "http://localhost:8000/site", Valid: true}},
		{"zenodo://1/x", Resolved{}},
		{"ftp://example.org", Resolved{}},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			if got := r.Resolve(tt.uri, ""); got != tt.want {
				t.Errorf("Resolve(%q) = %+v, want %+v", tt.uri, got, tt.want)
			}
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := mustNew(t, VariantScheme)
	uri := "sha1://" + strings.Repeat("c", 40)
	first := r.Resolve(uri, "z")
	for i := 0; i < 10; i++ {
		if got := r.Resolve(uri, "z"); got != first {
			t.Fatalf("iteration %d: %+v != %+v", i, got, first)
		}
	}
}

func TestInvalidImpliesNoURL(t *testing.T) {
	inputs := []string{"", "x", "sha1://short", "zenodo://", "https://zenodo.org/records/1/nofiles/x", "mailto:a@b"}
	for _, v := range []Variant{VariantScheme, VariantRecords} {
		r := mustNew(t, v)
		for _, in := range inputs {
			got := r.Resolve(in, "")
			if !got.Valid && got.URL != "" {
				t.Errorf("%s: Resolve(%q) invalid but URL = %q", v, in, got.URL)
			}
			if got.Valid && got.URL == "" {
				t.Errorf("%s: Resolve(%q) valid without URL", v, in)
			}
		}
	}
}
