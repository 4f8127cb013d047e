package detection

import (
	"errors"
	"testing"
)

func TestFace_Center(t *testing.T) {
	tests := []struct {
		name    string
		face    Face
		expectX float64
		expectY float64
	}{
		{
			name:    "center of image",
			face:    Face{X: 0.25, Y: 0.25, W: 0.5, H: 0.5},
			expectX: 0.5,
			expectY: 0.5,
		},
		{
			name:    "top left corner",
			face:    Face{X: 0, Y: 0, W: 0.2, H: 0.2},
			expectX: 0.1,
			expectY: 0.1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y := tc.face.Center()
			if x != tc.expectX {
				t.Errorf("Center X: got %.2f, want %.2f", x, tc.expectX)
			}
			if y != tc.expectY {
				t.Errorf("Center Y: got %.2f, want %.2f", y, tc.expectY)
			}
		})
	}
}

func TestSelectBest(t *testing.T) {
	tests := []struct {
		name  string
		faces []Face
		want  *float64 // confidence of the expected pick, nil = none
	}{
		{
			name:  "no faces",
			faces: nil,
			want:  nil,
		},
		{
			name:  "single face",
			faces: []Face{{Confidence: 0.6, W: 0.1, H: 0.1}},
			want:  ptr(0.6),
		},
		{
			name: "confidence dominates",
			faces: []Face{
				{Confidence: 0.95, W: 0.1, H: 0.1},
				{Confidence: 0.55, W: 0.12, H: 0.12},
			},
			want: ptr(0.95),
		},
		{
			name: "large close face beats slightly more confident distant one",
			faces: []Face{
				{Confidence: 0.80, W: 0.5, H: 0.5},
				{Confidence: 0.85, W: 0.1, H: 0.1},
			},
			want: ptr(0.80),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			best := SelectBest(tc.faces)
			if tc.want == nil {
				if best != nil {
					t.Fatalf("got %+v, want nil", best)
				}
				return
			}
			if best == nil {
				t.Fatal("got nil, want a face")
			}
			if best.Confidence != *tc.want {
				t.Errorf("picked confidence %v, want %v", best.Confidence, *tc.want)
			}
		})
	}
}

func ptr(f float64) *float64 { return &f }

func TestMockDetector_ReplaysScript(t *testing.T) {
	one := []Face{{Confidence: 0.9}}
	m := NewMock(one, nil)

	got, err := m.Detect(nil)
	if err != nil || len(got) != 1 {
		t.Fatalf("first frame: got %v, %v", got, err)
	}
	got, err = m.Detect(nil)
	if err != nil || got != nil {
		t.Fatalf("second frame: got %v, %v, want miss", got, err)
	}
	// Script exhausted: last frame repeats.
	got, err = m.Detect(nil)
	if err != nil || got != nil {
		t.Fatalf("repeated frame: got %v, %v, want miss", got, err)
	}
}

func TestMockDetector_FailWith(t *testing.T) {
	wantErr := errors.New("camera unplugged")
	m := NewMock([]Face{{Confidence: 0.9}}).FailWith(wantErr)

	if _, err := m.Detect(nil); err != nil {
		t.Fatalf("first frame errored: %v", err)
	}
	if _, err := m.Detect(nil); !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want scripted error", err)
	}
}
