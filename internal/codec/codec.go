/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package codec reads and writes the .draw document format: a JSON object
// with exactly two fields, an embedded background image as a data URL and
// the ordered stroke list.
package codec

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"freedraw/internal/strokes"
)

// Ext is the file extension of saved drawings.
const Ext = ".draw"

// ErrMalformed marks every decode failure. Callers test with errors.Is.
var ErrMalformed = errors.New("malformed drawing")

//go:embed schema.json
var schemaJSON string

var schema = mustSchema(schemaJSON)

func mustSchema(s string) *gojsonschema.Schema {
	sc, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("codec: bad embedded schema: %v", err))
	}
	return sc
}

// Schema returns the JSON schema every .draw file satisfies.
func Schema() string { return schemaJSON }

// Document is a decoded drawing.
type Document struct {
	// BackgroundImage is the data URL as stored; empty means no background.
	BackgroundImage string
	// Background is the decoded BackgroundImage, nil when empty.
	Background image.Image
	Strokes    []strokes.Stroke
}

type file struct {
	BackgroundImage string           `json:"backgroundImage"`
	Strokes         []strokes.Stroke `json:"strokes"`
}

// Encode serializes a background data URL and the stroke list. A nil list is
// written as an empty array.
func Encode(background string, list []strokes.Stroke) ([]byte, error) {
	f := file{BackgroundImage: background, Strokes: list}
	if f.Strokes == nil {
		f.Strokes = []strokes.Stroke{}
	}
	for i, s := range f.Strokes {
		if len(s.Points) < 2 {
			return nil, fmt.Errorf("stroke %d has %d points", i, len(s.Points))
		}
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode drawing: %w", err)
	}
	return data, nil
}

// Decode parses and validates data. It either returns a complete document or
// an error wrapping ErrMalformed.
func Decode(data []byte) (Document, error) {
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !res.Valid() {
		return Document{}, fmt.Errorf("%w: %s", ErrMalformed, describe(res.Errors()))
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	doc := Document{BackgroundImage: f.BackgroundImage, Strokes: f.Strokes}
	if doc.Strokes == nil {
		doc.Strokes = []strokes.Stroke{}
	}
	if f.BackgroundImage != "" {
		img, err := DecodeDataURL(f.BackgroundImage)
		if err != nil {
			return Document{}, fmt.Errorf("%w: background: %v", ErrMalformed, err)
		}
		doc.Background = img
	}
	return doc, nil
}

func describe(errs []gojsonschema.ResultError) string {
	const limit = 3
	parts := make([]string, 0, limit+1)
	for i, e := range errs {
		if i == limit {
			parts = append(parts, fmt.Sprintf("and %d more", len(errs)-limit))
			break
		}
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}
