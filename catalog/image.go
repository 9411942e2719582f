package catalog

import (
	"bytes"
	"encoding/base64"
	"log"
	"strings"

	"github.com/disintegration/imaging"
)

const thumbWidth = 300

// DeriveThumbnail produces the display thumbnail used by cart snapshots.
// Data-URI uploads are decoded and resized; external URLs serve as their
// own thumbnail; anything undecodable falls back to the original value.
func DeriveThumbnail(image string) string {
	if image == "" {
		return ""
	}
	if !strings.HasPrefix(image, "data:image/") {
		return image
	}

	comma := strings.Index(image, ",")
	if comma < 0 {
		return image
	}
	raw, err := base64.StdEncoding.DecodeString(image[comma+1:])
	if err != nil {
		log.Println("catalog: bad image data URI:", err)
		return image
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		log.Println("catalog: failed to decode image:", err)
		return image
	}

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		log.Println("catalog: failed to encode thumbnail:", err)
		return image
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
