package overlay

import "testing"

func TestNewNormalizer_InvalidResolution(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
	}{
		{"zero width", 0, 640},
		{"zero height", 640, 0},
		{"negative width", -640, 640},
		{"negative height", 640, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewNormalizer(tt.w, tt.h); err == nil {
				t.Fatalf("expected error for %gx%g, got nil", tt.w, tt.h)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	n, err := NewNormalizer(640, 640)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		in   Box
		want Box
	}{
		{
			name: "centered box",
			in:   Box{X: 320, Y: 320, Width: 64, Height: 64},
			want: Box{X: 50, Y: 50, Width: 10, Height: 10},
		},
		{
			name: "origin",
			in:   Box{X: 0, Y: 0, Width: 640, Height: 640},
			want: Box{X: 0, Y: 0, Width: 100, Height: 100},
		},
		{
			name: "quarter",
			in:   Box{X: 160, Y: 480, Width: 32, Height: 16},
			want: Box{X: 25, Y: 75, Width: 5, Height: 2.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.in)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNormalize_NonSquareReference(t *testing.T) {
	n, err := NewNormalizer(1280, 720)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := n.Normalize(Box{X: 640, Y: 360, Width: 128, Height: 72})
	want := Box{X: 50, Y: 50, Width: 10, Height: 10}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
