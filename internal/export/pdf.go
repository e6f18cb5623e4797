/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"freedraw/internal/codec"
	applog "freedraw/internal/log"
	"freedraw/internal/render"
	"freedraw/internal/surface"
)

// PDFOptions controls PDF export behavior.
// Units are points; one canvas pixel maps to one point.
type PDFOptions struct {
	Width, Height int
	Style         render.Style
	Title         string
}

// PDF writes doc as a single page with the background embedded as an image
// and every stroke as a vector path.
func PDF(doc codec.Document, w io.Writer, opt PDFOptions) error {
	pdf, err := buildPDF(doc, opt)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// PDFFile is PDF writing to outPath, creating parent directories.
func PDFFile(doc codec.Document, outPath string, opt PDFOptions) error {
	if outPath == "" {
		return errors.New("output path is required")
	}
	pdf, err := buildPDF(doc, opt)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func buildPDF(doc codec.Document, opt PDFOptions) (*gofpdf.Fpdf, error) {
	l := applog.WithOperation(applog.WithComponent("export"), "pdf")
	style := opt.Style
	def := render.DefaultStyle()
	if style.StrokeWidth <= 0 {
		style.StrokeWidth = def.StrokeWidth
	}
	if style.OutlineColor == "" {
		style.OutlineColor = def.OutlineColor
	}
	if style.CloseThreshold <= 0 {
		style.CloseThreshold = def.CloseThreshold
	}
	outline, err := surface.ParseColor(style.OutlineColor)
	if err != nil {
		return nil, fmt.Errorf("outline color: %w", err)
	}

	w, h := CanvasSize(doc, opt.Width, opt.Height)
	size := gofpdf.SizeType{Wd: float64(w), Ht: float64(h)}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	pdf.SetCreator("freedraw", false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", size)

	if doc.Background != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, doc.Background); err != nil {
			return nil, fmt.Errorf("encode background: %w", err)
		}
		imgOpt := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("background", imgOpt, &buf)
		b := doc.Background.Bounds()
		pdf.ImageOptions("background", 0, 0, float64(b.Dx()), float64(b.Dy()), false, imgOpt, 0, "")
	}

	pdf.SetLineWidth(style.StrokeWidth)
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	for i, st := range doc.Strokes {
		pts := st.Effective()
		if len(pts) == 0 {
			continue
		}
		trace := func() {
			pdf.MoveTo(pts[0].X, pts[0].Y)
			for _, p := range pts[1:] {
				pdf.LineTo(p.X, p.Y)
			}
		}
		setColor(pdf, outline, pdf.SetDrawColor)
		trace()
		pdf.DrawPath("D")

		if !st.Closed(style.CloseThreshold) {
			continue
		}
		fill, err := surface.ParseColor(st.Color)
		if err != nil {
			l.Warn("skip fill with bad color", slog.Int("index", i), slog.String("color", st.Color))
			continue
		}
		setColor(pdf, fill, pdf.SetFillColor)
		trace()
		pdf.ClosePath()
		pdf.DrawPath("F")
	}
	pdf.SetAlpha(1, "Normal")
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}
	return pdf, nil
}

// setColor applies c through set and mirrors its alpha as the PDF constant
// alpha for the following paint operation.
func setColor(pdf *gofpdf.Fpdf, c color.NRGBA, set func(r, g, b int)) {
	set(int(c.R), int(c.G), int(c.B))
	pdf.SetAlpha(float64(c.A)/255, "Normal")
}
