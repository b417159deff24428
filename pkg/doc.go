// Package pkg provides the libraries behind localitree.
//
// # Overview
//
// Localitree draws a locality tree, a JSON array whose first element is the
// root node, as a horizontal node-link diagram. The pkg directory is organized
// by pipeline stage:
//
//  1. [tree] - The node model, collapse state and JSON decoding
//  2. [loader] - Fetching documents from URLs or local files
//  3. [layout] - Tidy tree positions for the visible nodes
//  4. [render/nodelink] - SVG, HTML and DOT output
//  5. [render] - PNG rasterization
//  6. [pipeline] - Orchestration (load → layout → render)
//
// Supporting packages: [cache] (file, Redis and null caches), [config]
// (TOML, environment and .env settings), [errors] (coded errors),
// [observability] (hooks for metrics) and [buildinfo].
//
// # Architecture
//
//	locality.json (HTTP or file)
//	         ↓
//	    [loader] (fetch, cache, decode into [tree])
//	         ↓
//	    [pipeline] (apply collapse options)
//	         ↓
//	    [layout] (x by depth, y by tidy tree)
//	         ↓
//	    [render/nodelink], [render] (SVG/HTML/PNG/JSON/DOT)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/localitree/pkg/loader"
//	    "github.com/matzehuels/localitree/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(loader.New(loader.Options{}), nil)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "http://localhost:8000/",
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("locality.svg", result.Artifacts[pipeline.FormatSVG], 0o644)
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/localitree/pkg/tree
// [loader]: https://pkg.go.dev/github.com/matzehuels/localitree/pkg/loader
// [layout]: https://pkg.go.dev/github.com/matzehuels/localitree/pkg/layout
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/localitree/pkg/render/nodelink
// [render]: https://pkg.go.dev/github.com/matzehuels/localitree/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/localitree/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/localitree/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/localitree/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/localitree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/localitree/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/localitree/pkg/buildinfo
package pkg
