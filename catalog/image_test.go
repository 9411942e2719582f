package catalog

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestDeriveThumbnailPassesThroughURLs(t *testing.T) {
	url := "https://cdn.example.com/shoe.jpg"
	if got := DeriveThumbnail(url); got != url {
		t.Fatalf("expected URL passthrough, got %q", got)
	}
	if got := DeriveThumbnail(""); got != "" {
		t.Fatalf("expected empty passthrough, got %q", got)
	}
}

func TestDeriveThumbnailResizesDataURI(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for x := 0; x < 640; x++ {
		for y := 0; y < 480; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	got := DeriveThumbnail(uri)
	if !strings.HasPrefix(got, "data:image/jpeg;base64,") {
		t.Fatalf("expected jpeg data URI thumbnail, got prefix %q", got[:min(40, len(got))])
	}
	if len(got) >= len(uri) {
		t.Fatal("thumbnail should be smaller than the original")
	}
}

func TestDeriveThumbnailKeepsUndecodableValue(t *testing.T) {
	bad := "data:image/png;base64,not-base64!!"
	if got := DeriveThumbnail(bad); got != bad {
		t.Fatalf("expected undecodable value kept, got %q", got)
	}
}
