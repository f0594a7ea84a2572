package field

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/richdex/internal/domain/record"
)

func TestNew_Valid(t *testing.T) {
	tests := []struct {
		name    string
		kind    record.Kind
		indexed bool
	}{
		{"type", record.KindText, true},
		{"weight", record.KindNumeric, true},
		{"birthday", record.KindTime, false},
		{strings.Repeat("x", 64), record.KindText, false},
	}

	for _, tt := range tests {
		f, err := New(tt.name, tt.kind, tt.indexed)
		if err != nil {
			t.Errorf("New(%q, %q) unexpected error: %v", tt.name, tt.kind, err)
			continue
		}
		if f.Name() != tt.name {
			t.Errorf("Name() = %q, want %q", f.Name(), tt.name)
		}
		if f.Kind() != tt.kind {
			t.Errorf("Kind() = %q, want %q", f.Kind(), tt.kind)
		}
		if f.Indexed() != tt.indexed {
			t.Errorf("Indexed() = %v, want %v", f.Indexed(), tt.indexed)
		}
	}
}

func TestNew_EmptyName(t *testing.T) {
	_, err := New("", record.KindText, false)
	if err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestNew_NameTooLong(t *testing.T) {
	_, err := New(strings.Repeat("x", 65), record.KindText, false)
	if err == nil {
		t.Fatal("expected error for name too long")
	}
	if !strings.Contains(err.Error(), "too long") {
		t.Errorf("error = %q, want 'too long'", err)
	}
}

func TestNew_InvalidKind(t *testing.T) {
	_, err := New("type", "vector", false)
	if err == nil {
		t.Fatal("expected error for invalid kind")
	}
	if !strings.Contains(err.Error(), "invalid kind") {
		t.Errorf("error = %q, want 'invalid kind'", err)
	}
}

func TestReconstruct_SkipsValidation(t *testing.T) {
	f := Reconstruct("", "weird", true)
	if f.Name() != "" || f.Kind() != "weird" {
		t.Error("Reconstruct should skip validation")
	}
}
