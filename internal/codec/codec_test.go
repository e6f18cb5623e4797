/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package codec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/xeipuuv/gojsonschema"

	"freedraw/internal/geom"
	"freedraw/internal/strokes"
)

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 80), B: 7, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png: %v", err)
	}
	return buf.Bytes()
}

func sampleStrokes() []strokes.Stroke {
	return []strokes.Stroke{
		{Points: []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 1, Y: 1}}, Color: "#ff0000"},
		{Points: []geom.Point{{X: 5.5, Y: 6.25}, {X: 40, Y: 2}}, Color: "blue", Position: geom.Pt(3, -4)},
	}
}

func TestRoundTrip(t *testing.T) {
	bg := EncodeDataURL(samplePNG(t))
	in := sampleStrokes()
	data, err := Encode(bg, in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.BackgroundImage != bg {
		t.Fatalf("background string changed")
	}
	if len(doc.Strokes) != len(in) {
		t.Fatalf("strokes: got %d want %d", len(doc.Strokes), len(in))
	}
	for i := range in {
		got, want := doc.Strokes[i], in[i]
		if got.Color != want.Color || got.Position != want.Position || len(got.Points) != len(want.Points) {
			t.Fatalf("stroke %d: got %+v want %+v", i, got, want)
		}
		for j := range want.Points {
			if got.Points[j] != want.Points[j] {
				t.Fatalf("stroke %d point %d: got %v want %v", i, j, got.Points[j], want.Points[j])
			}
		}
	}
	if doc.Background == nil {
		t.Fatalf("expected decoded background")
	}
	if b := doc.Background.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("background size: %v", b)
	}
	r, g, _, _ := doc.Background.At(3, 2).RGBA()
	if r>>8 != 180 || g>>8 != 160 {
		t.Fatalf("background pixel: r=%d g=%d", r>>8, g>>8)
	}
}

func TestEncodeMatchesSchema(t *testing.T) {
	data, err := Encode("", sampleStrokes())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	res, err := gojsonschema.Validate(gojsonschema.NewStringLoader(Schema()), gojsonschema.NewBytesLoader(data))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !res.Valid() {
		t.Fatalf("encoded output invalid: %v", res.Errors())
	}
	if !strings.Contains(string(data), `"backgroundImage":""`) {
		t.Fatalf("unexpected encoding: %s", data)
	}
}

func TestEncodeEmpty(t *testing.T) {
	data, err := Encode("", nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(data) != `{"backgroundImage":"","strokes":[]}` {
		t.Fatalf("got %s", data)
	}
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Background != nil || len(doc.Strokes) != 0 || doc.Strokes == nil {
		t.Fatalf("unexpected doc %+v", doc)
	}
}

func TestEncodeRejectsDegenerate(t *testing.T) {
	_, err := Encode("", []strokes.Stroke{{Points: []geom.Point{{X: 1, Y: 1}}, Color: "red"}})
	if err == nil {
		t.Fatalf("expected error for single point stroke")
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"truncated", `{"backgroundImage":"","strokes":[`},
		{"not json", `hello`},
		{"extra field", `{"backgroundImage":"","strokes":[],"version":2}`},
		{"missing strokes", `{"backgroundImage":""}`},
		{"missing background", `{"strokes":[]}`},
		{"one point", `{"backgroundImage":"","strokes":[{"points":[{"x":1,"y":2}],"color":"red","position":{"x":0,"y":0}}]}`},
		{"string coord", `{"backgroundImage":"","strokes":[{"points":[{"x":"1","y":2},{"x":3,"y":4}],"color":"red","position":{"x":0,"y":0}}]}`},
		{"missing position", `{"backgroundImage":"","strokes":[{"points":[{"x":1,"y":2},{"x":3,"y":4}],"color":"red"}]}`},
		{"bad data url", `{"backgroundImage":"not a url","strokes":[]}`},
		{"not an image", `{"backgroundImage":"data:image/png;base64,aGVsbG8=","strokes":[]}`},
		{"text payload", `{"backgroundImage":"data:text/plain;base64,aGVsbG8=","strokes":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Decode([]byte(tc.data))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			if doc.Strokes != nil || doc.Background != nil {
				t.Fatalf("partial document returned: %+v", doc)
			}
		})
	}
}

func TestDataURL(t *testing.T) {
	url := EncodeDataURL(samplePNG(t))
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("prefix: %q", url[:30])
	}
	img, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Fatalf("width: %d", img.Bounds().Dx())
	}
	if _, err := DecodeDataURL("data:image/png,raw"); err == nil {
		t.Fatalf("expected error for non-base64 url")
	}
}
