// Package nodelink renders classified dependency trees as node-link
// diagrams.
//
// # Overview
//
// Every dependency appears as a box coloured by the bucket the classpath
// resolver put it in:
//
//   - shared: blue
//   - non-shared (embedded): green
//   - optional: yellow
//   - excluded: grey, dashed outline
//
// The module itself has a bold outline and no fill. Extension trees hang
// off the module with dashed edges.
//
// # Usage
//
// Convert a tree and its resolution state to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(tree, state, nodelink.Options{Extensions: merged.Trees})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be written out and processed with external
// Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
