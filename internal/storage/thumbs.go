/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// DefaultThumbSize is the longest edge of thumbnails in the recents index.
const DefaultThumbSize = 160

// Thumbnail scales img so its longest edge is at most maxEdge and returns it
// PNG encoded along with the resulting size. Images already small enough are
// encoded unscaled.
func Thumbnail(img image.Image, maxEdge int) ([]byte, int, int, error) {
	if img == nil {
		return nil, 0, 0, errors.New("nil image")
	}
	if maxEdge <= 0 {
		maxEdge = DefaultThumbSize
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, 0, 0, errors.New("empty image")
	}
	tw, th := w, h
	if w > maxEdge || h > maxEdge {
		if w >= h {
			tw, th = maxEdge, max(1, h*maxEdge/w)
		} else {
			tw, th = max(1, w*maxEdge/h), maxEdge
		}
	}
	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, 0, 0, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), tw, th, nil
}
