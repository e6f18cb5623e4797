/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package surface

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"
)

// ParseColor understands the color notations a color picker or a saved file
// may carry: #rgb, #rgba, #rrggbb, #rrggbbaa, CSS color names,
// rgb(r, g, b), rgba(r, g, b, a) and "transparent".
func ParseColor(s string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return color.NRGBA{}, fmt.Errorf("empty color")
	case v == "transparent":
		return color.NRGBA{}, nil
	case strings.HasPrefix(v, "#"):
		return parseHex(v[1:])
	case strings.HasPrefix(v, "rgb(") || strings.HasPrefix(v, "rgba("):
		return parseFunc(v)
	}
	if c, ok := colornames.Map[v]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	return color.NRGBA{}, fmt.Errorf("unknown color %q", s)
}

func parseHex(h string) (color.NRGBA, error) {
	switch len(h) {
	case 3, 4, 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("bad hex color length %d", len(h))
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return color.NRGBA{}, fmt.Errorf("bad hex digit %q", c)
		}
	}
	return gg.Hex(h).Color().(color.NRGBA), nil
}

func parseFunc(v string) (color.NRGBA, error) {
	open := strings.IndexByte(v, '(')
	if !strings.HasSuffix(v, ")") {
		return color.NRGBA{}, fmt.Errorf("unterminated %q", v)
	}
	name := v[:open]
	args := strings.Split(v[open+1:len(v)-1], ",")
	want := 3
	if name == "rgba" {
		want = 4
	}
	if len(args) != want {
		return color.NRGBA{}, fmt.Errorf("%s expects %d arguments, got %d", name, want, len(args))
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, err := channel(strings.TrimSpace(args[i]))
		if err != nil {
			return color.NRGBA{}, err
		}
		ch[i] = n
	}
	a := uint8(255)
	if want == 4 {
		f, err := strconv.ParseFloat(strings.TrimSpace(args[3]), 64)
		if err != nil || f < 0 || f > 1 {
			return color.NRGBA{}, fmt.Errorf("bad alpha %q", args[3])
		}
		a = uint8(f*255 + 0.5)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: a}, nil
}

func channel(s string) (uint8, error) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || f < 0 || f > 100 {
			return 0, fmt.Errorf("bad channel %q", s)
		}
		return uint8(f*255/100 + 0.5), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 255 {
		return 0, fmt.Errorf("bad channel %q", s)
	}
	return uint8(n), nil
}
