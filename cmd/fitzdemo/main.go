// Command fitzdemo records a sample page into a display list, renders it
// to PNG, prints its text and searches it.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/fitz"
)

func main() {
	var (
		scale   = flag.Float64("scale", 2, "render scale")
		output  = flag.String("output", "demo.png", "output file")
		needle  = flag.String("search", "display", "text to search for")
		verbose = flag.Bool("v", false, "log replay diagnostics")
		trace   = flag.Bool("trace", false, "print every recorded device call")
	)
	flag.Parse()

	if *verbose {
		fitz.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	list, err := fitz.NewDisplayListFromPage(demoPage{})
	if err != nil {
		log.Fatalf("Failed to record page: %v", err)
	}
	defer list.Close()

	if *trace {
		if err := list.Run(fitz.NewTraceDevice(os.Stdout), fitz.Identity(), fitz.InfiniteRect); err != nil {
			log.Fatalf("Failed to trace: %v", err)
		}
	}

	pix, err := list.ToPixmap(fitz.Scale(*scale, *scale), fitz.DeviceRGB, false)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	if err := pix.SavePNG(*output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Page saved to %s (%dx%d)\n", *output, pix.Width(), pix.Height())

	page, err := list.ToTextPage(0)
	if err != nil {
		log.Fatalf("Failed to extract text: %v", err)
	}
	fmt.Print(page.Text())

	hits, err := list.Search(*needle, 0)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}
	fmt.Printf("%d hits for %q\n", len(hits), *needle)
	for _, q := range hits {
		fmt.Printf("  %v\n", q.Rect())
	}
}

// demoPage draws a small page: a gradient banner, a few shapes and two
// paragraphs of text.
type demoPage struct{}

func (demoPage) Bounds() fitz.Rect {
	return fitz.Rect{X1: 400, Y1: 300}
}

func (demoPage) Run(dev fitz.Device, ctm fitz.Matrix, cookie *fitz.Cookie) error {
	banner := fitz.NewLinearShade(0, 0, 400, 0).
		AddColorStop(0, fitz.Hex("#1e3a8a")).
		AddColorStop(1, fitz.Hex("#38bdf8")).
		SetBBox(fitz.Rect{X1: 400, Y1: 60})
	if err := dev.FillShade(banner, ctm, 1); err != nil {
		return err
	}

	font := fitz.DefaultFont()
	bold, err := fitz.LoadBuiltinFont("Helvetica-Bold")
	if err != nil {
		return err
	}
	title := fitz.NewText()
	title.ShowString(bold, fitz.TextMatrix(28, 20, 42), "Display lists")
	if err := dev.FillText(title, ctm, fitz.White, 1); err != nil {
		return err
	}
	if cookie.Aborted() {
		return nil
	}

	for i, c := range []fitz.Color{fitz.RGB(1, 0.3, 0.3), fitz.RGB(0.3, 0.8, 0.3), fitz.RGB(0.3, 0.3, 1)} {
		p := fitz.NewPath()
		p.Circle(80+float64(i)*40, 140, 40)
		if err := dev.FillPath(p, false, ctm, c, 0.8); err != nil {
			return err
		}
	}

	star := fitz.NewPath()
	for k := range 5 {
		a := -math.Pi/2 + float64(k)*4*math.Pi/5
		x, y := 300+50*math.Cos(a), 140+50*math.Sin(a)
		if k == 0 {
			star.MoveTo(x, y)
		} else {
			star.LineTo(x, y)
		}
	}
	star.ClosePath()
	stroke := fitz.NewStrokeState().WithWidth(4).WithJoin(fitz.LineJoinRound)
	if err := dev.FillPath(star, true, ctm, fitz.Hex("#f59e0b"), 1); err != nil {
		return err
	}
	if err := dev.StrokePath(star, stroke, ctm, fitz.Black, 1); err != nil {
		return err
	}

	body := []string{
		"A display list records a page once and",
		"replays it to pixmaps, text pages and",
		"any other device, from many goroutines.",
	}
	for i, line := range body {
		t := fitz.NewText()
		t.ShowString(font, fitz.TextMatrix(14, 20, 220+float64(i)*18), line)
		if err := dev.FillText(t, ctm, fitz.Gray(0.15), 1); err != nil {
			return err
		}
	}
	return nil
}
