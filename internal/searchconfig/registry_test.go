package searchconfig

import "testing"

func TestResolve(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "full name", in: "english", want: "english"},
		{name: "alias", in: "es", want: "spanish"},
		{name: "case insensitive", in: "French", want: "french"},
		{name: "whitespace trimmed", in: " german ", want: "german"},
		{name: "empty falls back to default", in: "", want: "english"},
		{name: "unknown language", in: "klingon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Resolve(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Resolve(%q) expected error, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if registry.Default() != "english" {
		t.Errorf("Default() = %q, want english", registry.Default())
	}
}
