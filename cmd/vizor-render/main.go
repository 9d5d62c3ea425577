// vizor-render renders a markup file to SVG or PNG without starting
// the server. Run: go run ./cmd/vizor-render -in flow.mmd -out flow.svg
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rendis/vizor/internal/backend"
	"github.com/rendis/vizor/internal/classify"
	"github.com/rendis/vizor/internal/render"
	"github.com/rendis/vizor/internal/renderer"
	"github.com/rendis/vizor/pkg/schema"
)

func main() {
	in := flag.String("in", "-", "markup file (default: stdin)")
	out := flag.String("out", "", "output file (default: stdout; extension picks the format)")
	format := flag.String("format", "", "output format: svg or png (default: from -out extension, else svg)")
	theme := flag.String("theme", "light", "theme: light or dark")
	flag.Parse()

	markup, err := readMarkup(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if gateErr := classify.Check(markup); gateErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", gateErr.Message)
		os.Exit(1)
	}

	data, err := renderMarkup(markup, resolveFormat(*format, *out), schema.Theme(*theme))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *out == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Written: %s (%d bytes)\n", *out, len(data))
}

func readMarkup(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func resolveFormat(format, out string) string {
	if format != "" {
		return format
	}
	if strings.HasSuffix(out, ".png") {
		return "png"
	}
	return "svg"
}

func renderMarkup(markup, format string, theme schema.Theme) ([]byte, error) {
	ctx := context.Background()
	palette := render.PaletteFor(theme)
	diagramType := classify.Classify(markup)

	primary := renderer.NewGraphvizRenderer()

	switch format {
	case "png":
		if backend.Select(diagramType) != schema.BackendPrimary {
			return nil, fmt.Errorf("png output requires a primary-renderer diagram type, got %q", diagramType)
		}
		return primary.RenderPNG(ctx, markup, palette)
	case "svg":
		registry := renderer.NewRegistry(primary, renderer.NewGenericRenderer())
		tree, err := registry.For(backend.Select(diagramType)).Render(ctx, markup, palette)
		if err != nil {
			return nil, err
		}
		return tree.SVG, nil
	default:
		return nil, fmt.Errorf("unknown format %q, expected svg or png", format)
	}
}
