package core

import "testing"

func TestShortName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"uber-go/zap", "zap"},
		{"requests", "requests"},
		{"@babel/core", "core"},
	}
	for _, tt := range tests {
		r := &Record{Name: tt.name}
		if got := r.ShortName(); got != tt.want {
			t.Errorf("ShortName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	r := &Record{Namespace: NamespaceNPM, Name: "react"}
	if got := r.Key(); got != "npm/react" {
		t.Errorf("expected key 'npm/react', got %q", got)
	}
}

func TestHasDiscrepancy(t *testing.T) {
	r := &Record{Discrepancies: []Discrepancy{DiscrepNoLicenseFile}}
	if !r.HasDiscrepancy(DiscrepNoLicenseFile) {
		t.Error("expected DiscrepNoLicenseFile to be present")
	}
	if r.HasDiscrepancy(DiscrepRegistryNoAuthor) {
		t.Error("expected DiscrepRegistryNoAuthor to be absent")
	}
}
