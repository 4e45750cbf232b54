// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package content

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ImageTypes lists the media types DecodeImage is registered for in
// DefaultRegistry.
var ImageTypes = []string{
	"image/png",
	"image/jpg",
	"image/jpeg",
	"image/gif",
	"image/tiff",
	"image/tif",
	"image/bmp",
	"image/*",
}

// An ImageOption changes how an Image converter encodes its image.
type ImageOption func(*Image)

// Base64JSON makes the converter produce a JSON string holding the
// base64 encoding of the PNG bytes, with MIME type JSONMimeType.
func Base64JSON() ImageOption {
	return func(i *Image) {
		i.base64 = true
	}
}

// Thumbnail scales the image down, preserving its aspect ratio, so that
// it fits within maxWidth x maxHeight before it is encoded. Images
// already within the bounds are not scaled.
func Thumbnail(maxWidth, maxHeight uint) ImageOption {
	return func(i *Image) {
		i.maxWidth, i.maxHeight = maxWidth, maxHeight
	}
}

// An Image converter encodes an in-memory image as PNG.
type Image struct {
	partHeader
	memo
	img                 image.Image
	base64              bool
	maxWidth, maxHeight uint
}

// NewImage returns a converter for img.
func NewImage(img image.Image, opts ...ImageOption) *Image {
	i := &Image{img: img}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// MimeType returns "image/png", or JSONMimeType when the Base64JSON
// option is set.
func (i *Image) MimeType() string {
	if i.base64 {
		return JSONMimeType
	}
	return "image/png"
}

// Encode returns the PNG encoding of the image.
func (i *Image) Encode() ([]byte, error) {
	return i.do(func() ([]byte, error) {
		img := i.img
		if i.maxWidth > 0 && i.maxHeight > 0 {
			img = resize.Thumbnail(i.maxWidth, i.maxHeight, img, resize.Lanczos3)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
		if !i.base64 {
			return buf.Bytes(), nil
		}
		return json.Marshal(base64.StdEncoding.EncodeToString(buf.Bytes()))
	})
}

// DecodeImage decodes a PNG, JPEG, GIF, TIFF or BMP body into an
// image.Image. The format is detected from the body rather than from
// the media type.
func DecodeImage(body []byte, _ map[string]string) (interface{}, error) {
	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return img, nil
}
