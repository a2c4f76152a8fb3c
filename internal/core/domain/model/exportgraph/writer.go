package exportgraph

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Fixed bounding box of the service area, emitted in the document header.
// The compiler derives actual extents itself; the header only has to
// enclose the network.
const (
	boundsMinLat = "-90.0000000"
	boundsMinLon = "-180.0000000"
	boundsMaxLat = "90.0000000"
	boundsMaxLon = "180.0000000"
)

const generatorName = "routing-graph-exporter"

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// WriteTo writes the document in one pass: header, all nodes, all ways.
// Output is byte-identical for equal graphs. Implements io.WriterTo.
func (g *Graph) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	fmt.Fprintf(bw, "<?xml version='1.0' encoding='UTF-8'?>\n")
	fmt.Fprintf(bw, "<osm version=\"0.6\" generator=\"%s\">\n", generatorName)
	fmt.Fprintf(bw, "  <bounds minlat=\"%s\" minlon=\"%s\" maxlat=\"%s\" maxlon=\"%s\"/>\n",
		boundsMinLat, boundsMinLon, boundsMaxLat, boundsMaxLon)

	for _, node := range g.nodes {
		fmt.Fprintf(bw, "  <node id=\"%d\" lat=\"%s\" lon=\"%s\" version=\"1\"/>\n",
			node.ID, node.Lat, node.Lon)
	}

	for _, way := range g.ways {
		fmt.Fprintf(bw, "  <way id=\"%d\" version=\"1\">\n", way.ID)
		for _, ref := range way.Nodes {
			fmt.Fprintf(bw, "    <nd ref=\"%d\"/>\n", ref)
		}
		for _, tag := range way.Tags {
			fmt.Fprintf(bw, "    <tag k=\"%s\" v=\"%s\"/>\n",
				xmlEscaper.Replace(tag.Key), xmlEscaper.Replace(tag.Value))
		}
		fmt.Fprintf(bw, "  </way>\n")
	}

	fmt.Fprintf(bw, "</osm>\n")
	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, cw.err
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	if cw.err != nil {
		return 0, cw.err
	}
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	cw.err = err
	return n, err
}
