package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stackbundle/pkg/classpath"
	"github.com/matzehuels/stackbundle/pkg/deps"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the bucket and artifact file to node labels.
	// When false, only the coordinate is shown.
	Detailed bool

	// Extensions are drawn below the module with dashed edges.
	Extensions []*deps.Node
}

// bucketStyle holds the fill colour per bucket.
var bucketStyle = map[classpath.Bucket]string{
	classpath.BucketShared:    "#cfe8ff",
	classpath.BucketNonShared: "#d9f2d0",
	classpath.BucketOptional:  "#fff1c2",
	classpath.BucketExcluded:  "#eeeeee",
}

// ToDOT converts a classified tree to Graphviz DOT. Each identity becomes
// one node coloured by its final bucket, so a dependency reached through
// several paths is drawn once. A nil state draws the tree uncoloured.
func ToDOT(root *deps.Node, state *classpath.State, opts Options) string {
	buckets := finalBuckets(state)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	nodes := make(map[deps.Identity]bool)
	edges := make(map[[2]deps.Identity]bool)
	var body bytes.Buffer

	writeNode := func(n *deps.Node, b classpath.Bucket, extra ...string) {
		if nodes[n.ID] {
			return
		}
		nodes[n.ID] = true
		attrs := append(fmtAttrs(n, b, opts.Detailed), extra...)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID.String(), strings.Join(attrs, ", "))
	}
	writeEdge := func(from, to *deps.Node, extra string) {
		key := [2]deps.Identity{from.ID, to.ID}
		if edges[key] {
			return
		}
		edges[key] = true
		fmt.Fprintf(&body, "  %q -> %q%s;\n", from.ID.String(), to.ID.String(), extra)
	}

	writeNode(root, classpath.BucketNone, "penwidth=2")
	var walk func(*deps.Node)
	walk = func(n *deps.Node) {
		for _, c := range n.Children {
			writeNode(c, buckets[c.ID])
			writeEdge(n, c, "")
			walk(c)
		}
	}
	walk(root)
	for _, ext := range opts.Extensions {
		if ext == nil {
			continue
		}
		writeNode(ext, buckets[ext.ID])
		writeEdge(root, ext, " [style=dashed]")
		walk(ext)
	}

	buf.WriteString("\n")
	buf.Write(body.Bytes())
	buf.WriteString("}\n")
	return buf.String()
}

// finalBuckets maps identities to the bucket they ended up in after
// deduplication. Shared wins over optional, optional over non-shared.
func finalBuckets(s *classpath.State) map[deps.Identity]classpath.Bucket {
	out := make(map[deps.Identity]classpath.Bucket)
	if s == nil {
		return out
	}
	lists := []struct {
		nodes  []*deps.Node
		bucket classpath.Bucket
	}{
		{s.Shared, classpath.BucketShared},
		{s.Optional, classpath.BucketOptional},
		{s.NonShared, classpath.BucketNonShared},
		{s.Excluded, classpath.BucketExcluded},
	}
	for _, l := range lists {
		for _, n := range l.nodes {
			if _, ok := out[n.ID]; !ok {
				out[n.ID] = l.bucket
			}
		}
	}
	return out
}

func fmtLabel(n *deps.Node, b classpath.Bucket, detailed bool) string {
	label := n.ID.Coordinate()
	if !detailed {
		return label
	}
	var parts []string
	if b != classpath.BucketNone {
		parts = append(parts, "bucket: "+string(b))
	}
	if n.Bundle {
		parts = append(parts, "bundle")
	}
	if n.File != "" {
		parts = append(parts, "file: "+filepath.Base(n.File))
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *deps.Node, b classpath.Bucket, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, b, detailed))}
	if color, ok := bucketStyle[b]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", color))
	}
	if b == classpath.BucketExcluded {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fontcolor=grey40")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
