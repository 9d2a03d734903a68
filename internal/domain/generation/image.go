package generation

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	MaxImageSize = 10 * 1024 * 1024
	MinImageSize = 1024
	MinDimension = 100
	MaxDimension = 10000
)

// allowedTypes maps accepted content types to the extension used when the
// client filename has none.
var allowedTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
}

const (
	msgRequired   = "An image file is required."
	msgInvalid    = "The uploaded file must be a valid file."
	msgNotImage   = "The uploaded file must be an image."
	msgMimes      = "The image must be a file of type: jpeg, png, jpg, gif, svg."
	msgTooLarge   = "The image size must not exceed 10MB."
	msgTooSmall   = "The image file is too small (minimum 1KB)."
	msgDimensions = "The image dimensions must be between 100x100 and 10000x10000 pixels."
)

type ImageInfo struct {
	MimeType  string
	Extension string
	Width     int
	Height    int
}

// ValidateImage checks the raw upload. The content type comes from the bytes,
// never from the client. SVG has no raster size and skips the dimension rule.
func ValidateImage(data []byte) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, invalidImage(msgRequired)
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(baseType(detected), "image/") {
		return nil, invalidImage(msgNotImage)
	}
	mimeType, ext, ok := acceptedType(detected)
	if !ok {
		return nil, invalidImage(msgMimes)
	}

	if len(data) > MaxImageSize {
		return nil, invalidImage(msgTooLarge)
	}
	if len(data) < MinImageSize {
		return nil, invalidImage(msgTooSmall)
	}

	info := &ImageInfo{MimeType: mimeType, Extension: ext}
	if mimeType == "image/svg+xml" {
		return info, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, invalidImage(msgNotImage)
	}
	if cfg.Width < MinDimension || cfg.Height < MinDimension ||
		cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, invalidImage(msgDimensions)
	}
	info.Width, info.Height = cfg.Width, cfg.Height

	return info, nil
}

// acceptedType walks from the detected type up through its parents, so
// subtypes such as APNG are accepted as their base format.
func acceptedType(detected *mimetype.MIME) (mimeType, ext string, ok bool) {
	for m := detected; m != nil; m = m.Parent() {
		name := baseType(m)
		if ext, ok := allowedTypes[name]; ok {
			return name, ext, true
		}
	}
	return "", "", false
}

func baseType(m *mimetype.MIME) string {
	name, _, _ := strings.Cut(m.String(), ";")
	return name
}

var (
	unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	extPattern      = regexp.MustCompile(`^\.[A-Za-z0-9]{1,10}$`)
)

// StorageFilename builds "<sanitized base>_<32 hex chars><ext>" from the
// client filename. fallbackExt is used when the client name has no usable
// extension.
func StorageFilename(original, fallbackExt string) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)

	if !extPattern.MatchString(ext) {
		ext = fallbackExt
	}

	name = strings.TrimLeft(unsafeNameChars.ReplaceAllString(name, "_"), ".")
	if name == "" {
		name = "image"
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_%s%s", name, token, ext)
}
