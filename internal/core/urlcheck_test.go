package core

import "testing"

func TestVetURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"clean https", "https://github.com/pallets/flask", ""},
		{"plain http", "http://flask.pocoo.org/", "Scheme is not https://"},
		{"query string", "https://example.com/project?utm_source=pypi", "URL includes parameters or a query string"},
		{"fragment", "https://example.com/project#readme", "URL includes a #fragment"},
		{"everything wrong", "http://example.com/project?a=1#top", "Scheme is not https://, URL includes parameters or a query string, URL includes a #fragment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VetURL(tt.url); got != tt.want {
				t.Errorf("VetURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestBadURLDiscrepancy(t *testing.T) {
	got := BadURLDiscrepancy("Scheme is not https://")
	want := Discrepancy("Package registry entry has a bad project or repo URL: Scheme is not https://")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
