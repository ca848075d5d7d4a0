// objtool is a CLI utility for inspecting OBJ meshes outside the viewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/schollz/progressbar/v3"

	"github.com/Faultbox/objview/internal/assets"
	"github.com/Faultbox/objview/internal/engine/mesh"
	"github.com/Faultbox/objview/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "dump":
		cmdDump(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objtool - OBJ mesh inspection utility

Usage:
  objtool <command> [options]

Commands:
  info <source>...                 Show face and vertex counts
  dump [-range r] [-n N] <source>  Print the interleaved vertex buffer

Sources are file paths or http(s) URLs.

Examples:
  objtool info Assets/cat.obj Assets/terrain.obj
  objtool dump -range quads -n 12 Assets/terrain.obj
  objtool info https://example.com/models/cat.obj`)
}

// newFetcher returns a fetcher that shows a progress bar for downloads.
func newFetcher() *assets.Fetcher {
	f := assets.NewFetcher(nil)
	f.Progress = func(source string, size int64) io.Writer {
		return progressbar.DefaultBytes(size, "downloading "+path.Base(source))
	}
	return f
}

// load fetches and parses one source.
func load(f *assets.Fetcher, source string) (*formats.OBJ, *mesh.Mesh, error) {
	data, err := f.Fetch(context.Background(), source)
	if err != nil {
		return nil, nil, err
	}
	obj, err := formats.ParseOBJ(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", source, err)
	}
	return obj, mesh.Build(obj), nil
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool info <source>...")
		os.Exit(1)
	}

	f := newFetcher()
	failed := false
	for _, source := range args {
		obj, m, err := load(f, source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			failed = true
			continue
		}
		printInfo(os.Stdout, source, obj, m)
	}
	if failed {
		os.Exit(1)
	}
}

func printInfo(w io.Writer, source string, obj *formats.OBJ, m *mesh.Mesh) {
	quads := 0
	for _, face := range obj.Faces {
		if face.IsQuad() {
			quads++
		}
	}
	b := m.Bounds()

	fmt.Fprintf(w, "Mesh:      %s\n", source)
	fmt.Fprintf(w, "Positions: %d\n", len(obj.Positions))
	fmt.Fprintf(w, "Normals:   %d\n", len(obj.Normals))
	fmt.Fprintf(w, "Faces:     %d (%d triangles, %d quads)\n", len(obj.Faces), len(obj.Faces)-quads, quads)
	fmt.Fprintf(w, "Vertices:  %d (offset %d)\n", m.VertexCount(), m.Offset)
	fmt.Fprintf(w, "Bounds:    (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n",
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	fmt.Fprintln(w)
}

func cmdDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	which := fs.String("range", "all", "Vertex range: all, triangles or quads")
	limit := fs.Int("n", 0, "Limit output to N vertices (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool dump [-range r] [-n N] <source>")
		os.Exit(1)
	}

	_, m, err := load(newFetcher(), fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	first, count, err := vertexRange(m, *which)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *limit > 0 && *limit < count {
		count = *limit
	}
	dumpVertices(os.Stdout, m, first, count)
}

// vertexRange resolves a named range to [first, first+count).
func vertexRange(m *mesh.Mesh, name string) (first, count int, err error) {
	switch name {
	case "all":
		return 0, m.VertexCount(), nil
	case "triangles", "tri":
		return 0, m.Offset, nil
	case "quads", "quad":
		return m.Offset, m.VertexCount() - m.Offset, nil
	default:
		return 0, 0, fmt.Errorf("unknown range %q (want all, triangles or quads)", name)
	}
}

func dumpVertices(w io.Writer, m *mesh.Mesh, first, count int) {
	for i := first; i < first+count; i++ {
		v := m.Vertex(i)
		fmt.Fprintf(w, "%6d  p(% .4f % .4f % .4f)  n(% .4f % .4f % .4f)\n", i,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2])
	}
}
