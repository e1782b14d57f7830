package render

import (
	"strings"
	"testing"
)

func TestConvertMissingTool(t *testing.T) {
	orig := converter
	converter = "rsvg-convert-does-not-exist"
	defer func() { converter = orig }()

	if Available() {
		t.Fatal("Available() = true for missing tool")
	}
	if _, err := ToPDF([]byte("<svg/>")); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("ToPDF error = %v, want not found", err)
	}
	if _, err := ToPNG([]byte("<svg/>"), 2); err == nil {
		t.Error("ToPNG should fail without the converter")
	}
}

func TestToPNG(t *testing.T) {
	if !Available() {
		t.Skip("rsvg-convert not installed")
	}
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`
	png, err := ToPNG([]byte(svg), 1)
	if err != nil {
		t.Fatalf("ToPNG: %v", err)
	}
	if !strings.HasPrefix(string(png), "\x89PNG") {
		t.Error("output is not a PNG")
	}
}
