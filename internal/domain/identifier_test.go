package domain

import (
	"testing"
)

func TestNewIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"simple", "Planner", false},
		{"underscore and digits", "Perception_A2", false},
		{"leading underscore", "_hidden", false},
		{"single letter", "A", false},
		{"empty", "", true},
		{"leading digit", "2Planner", true},
		{"dot", "Vehicle.Planner", true},
		{"dash", "path-planner", true},
		{"reserved word", "clock", true},
		{"reserved broadcast", "broadcast", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewIdentifier(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewIdentifier(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if !tt.wantErr && id.String() != tt.value {
				t.Errorf("String() = %q, want %q", id.String(), tt.value)
			}
		})
	}
}

func TestGroupPrefix(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"", GlobalGroup},
		{"   ", GlobalGroup},
		{"A", "A"},
		{"ego-vehicle", "ego_vehicle"},
		{"car 1", "car_1"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := GroupPrefix(tt.label); got != tt.want {
				t.Errorf("GroupPrefix(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	if got := Sanitize("e2e latency / A->C"); got != "e2e_latency_A_C" {
		t.Errorf("Sanitize() = %q", got)
	}
}
