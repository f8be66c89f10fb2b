package challenge

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	for _, length := range []int{1, DefaultLength, 32} {
		code, err := Generate(length)
		if err != nil {
			t.Fatalf("Generate(%d) error: %v", length, err)
		}
		if len(code) != length {
			t.Errorf("len(code) = %d, want %d", len(code), length)
		}
		for _, r := range code {
			if !strings.ContainsRune(Alphabet, r) {
				t.Errorf("code %q contains %q outside the alphabet", code, r)
			}
		}
	}
}

func TestGenerateRejectsBadLength(t *testing.T) {
	if _, err := Generate(0); err == nil {
		t.Error("Generate(0) should fail")
	}
}

func TestGenerateSpread(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := Generate(DefaultLength)
		if err != nil {
			t.Fatal(err)
		}
		seen[code] = true
	}
	// 36^8 possibilities; any repeat in 200 draws points at a broken source.
	if len(seen) != 200 {
		t.Errorf("got %d distinct codes out of 200", len(seen))
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  ab12cd34\n"); got != "AB12CD34" {
		t.Errorf("Normalize() = %q", got)
	}
}

func TestRenderProducesPNG(t *testing.T) {
	data, err := Render("K7Q2M9XA")
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() <= b.Dy() {
		t.Errorf("expected a landscape image, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderIsNoisy(t *testing.T) {
	a, err := Render("SAMECODE")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Render("SAMECODE")
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Error("two renders of the same code should differ")
	}
}

func TestRenderEmpty(t *testing.T) {
	if _, err := Render(""); err == nil {
		t.Error("Render(\"\") should fail")
	}
}
