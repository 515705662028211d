// SPDX-License-Identifier: EPL-2.0

package hrtf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/binaural/audio"
	"github.com/ik5/binaural/formats/wav"
)

func writeHRIR(t *testing.T, path string, left, right float64) {
	t.Helper()

	s := audio.NewStereo(32, 44100)
	s.Left[0] = left
	s.Right[0] = right

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := wav.WriteStereo(f, s, 16); err != nil {
		t.Fatalf("WriteStereo() error = %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, dir := range []string{"elev0", "elev-20"} {
		if err := os.MkdirAll(filepath.Join(root, "full", dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	writeHRIR(t, filepath.Join(root, "full", "elev0", "H0e000a.wav"), 0.5, 0.5)
	writeHRIR(t, filepath.Join(root, "full", "elev0", "H0e090a.wav"), 0.25, 0.75)
	writeHRIR(t, filepath.Join(root, "full", "elev0", "H0e270a.wav"), 0.75, 0.25)
	writeHRIR(t, filepath.Join(root, "full", "elev-20", "H-20e180a.wav"), 0.125, 0.125)
	if err := os.WriteFile(filepath.Join(root, "full", "elev0", "README.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadDir(os.DirFS(root), "full")
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if d.Directions() != 4 || d.Len() != 32 || d.SampleRate() != 44100 {
		t.Fatalf("Directions/Len/SampleRate = %d/%d/%d", d.Directions(), d.Len(), d.SampleRate())
	}
	if d.Name() != "full" {
		t.Errorf("Name() = %q, want full", d.Name())
	}

	tests := []struct {
		az, el      float64
		wantAz      float64
		left, right float64
	}{
		{az: -80, el: 0, wantAz: -90, left: 0.75, right: 0.25},
		{az: 95, el: 5, wantAz: 90, left: 0.25, right: 0.75},
		{az: 175, el: -15, wantAz: 180, left: 0.125, right: 0.125},
	}
	for _, tt := range tests {
		p, _ := d.IR(tt.az, tt.el)
		if p.Azimuth != tt.wantAz {
			t.Errorf("IR(%v, %v) azimuth = %v, want %v", tt.az, tt.el, p.Azimuth, tt.wantAz)
		}
		if p.Left[0] != tt.left || p.Right[0] != tt.right {
			t.Errorf("IR(%v, %v) first taps = %v/%v, want %v/%v", tt.az, tt.el, p.Left[0], p.Right[0], tt.left, tt.right)
		}
	}
}

func TestLoadDir_MirrorsOneSidedSet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "compact", "elev0")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeHRIR(t, filepath.Join(dir, "H0e000a.wav"), 0.5, 0.5)
	writeHRIR(t, filepath.Join(dir, "H0e045a.wav"), 0.375, 0.625)
	writeHRIR(t, filepath.Join(dir, "H0e090a.wav"), 0.25, 0.75)
	writeHRIR(t, filepath.Join(dir, "H0e180a.wav"), 0.125, 0.125)

	d, err := LoadDir(os.DirFS(root), "compact")
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	// 0 and 180 are their own reflections
	if d.Directions() != 6 {
		t.Fatalf("Directions() = %d, want 6", d.Directions())
	}

	tests := []struct {
		az          float64
		wantAz      float64
		left, right float64
	}{
		{az: -85, wantAz: -90, left: 0.75, right: 0.25},
		{az: -40, wantAz: -45, left: 0.625, right: 0.375},
		{az: 88, wantAz: 90, left: 0.25, right: 0.75},
		{az: 5, wantAz: 0, left: 0.5, right: 0.5},
		{az: -178, wantAz: 180, left: 0.125, right: 0.125},
	}
	for _, tt := range tests {
		p, _ := d.IR(tt.az, 0)
		if p.Azimuth != tt.wantAz {
			t.Errorf("IR(%v) azimuth = %v, want %v", tt.az, p.Azimuth, tt.wantAz)
		}
		if p.Left[0] != tt.left || p.Right[0] != tt.right {
			t.Errorf("IR(%v) first taps = %v/%v, want %v/%v", tt.az, p.Left[0], p.Right[0], tt.left, tt.right)
		}
	}
}

func TestMirror_KeepsMeasuredDirections(t *testing.T) {
	t.Parallel()

	l, r := []float64{1}, []float64{2}
	ms := []Measurement{
		{Azimuth: 30, Elevation: 10, Left: l, Right: r},
		{Azimuth: -30, Elevation: 10, Left: r, Right: r},
		{Azimuth: 60, Elevation: -10, Left: l, Right: r},
	}

	got := mirror(ms)
	if len(got) != 4 {
		t.Fatalf("mirror() = %d measurements, want 4", len(got))
	}
	if got[1].Left[0] != 2 {
		t.Error("a measured direction was replaced by a reflection")
	}
	if m := got[3]; m.Azimuth != -60 || m.Elevation != -10 || m.Left[0] != 2 || m.Right[0] != 1 {
		t.Errorf("reflection = %+v", m)
	}
}

func TestLoadDir_Unavailable(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	for _, dir := range []string{".", "missing"} {
		if _, err := LoadDir(os.DirFS(root), dir); !errors.Is(err, ErrUnavailable) {
			t.Errorf("LoadDir(%q) error = %v, want ErrUnavailable", dir, err)
		}
	}
}
