package uuid

import "testing"

func TestNew(t *testing.T) {
	t.Run("generates_valid_v7", func(t *testing.T) {
		id := New()
		if !IsValid(id) {
			t.Fatalf("expected valid uuid, got %q", id)
		}
		if id[14] != '7' {
			t.Errorf("expected version 7, got %q", id)
		}
	})

	t.Run("ids_are_unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 1000; i++ {
			id := New()
			if seen[id] {
				t.Fatalf("duplicate id %q", id)
			}
			seen[id] = true
		}
	})
}

func TestNewFromName(t *testing.T) {
	t.Run("is_deterministic", func(t *testing.T) {
		a := NewFromName("acct", "2024-01-02", "100")
		b := NewFromName("acct", "2024-01-02", "100")
		if a != b {
			t.Errorf("expected equal ids, got %q and %q", a, b)
		}
	})

	t.Run("differs_by_parts", func(t *testing.T) {
		if NewFromName("a", "b") == NewFromName("a", "c") {
			t.Error("expected different ids for different parts")
		}
	})

	t.Run("is_version_5", func(t *testing.T) {
		id := NewFromName("x")
		if id[14] != '5' {
			t.Errorf("expected version 5, got %q", id)
		}
	})
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{New(), true},
		{"0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b", true},
		{"42", false},
		{"", false},
		{"0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5", false},
	}
	for _, tt := range tests {
		if got := IsValid(tt.in); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
