// Package mesh builds flat GPU vertex buffers from parsed OBJ faces.
package mesh

import (
	"github.com/Faultbox/objview/pkg/formats"
	"github.com/Faultbox/objview/pkg/math"
)

// Stride is the number of floats per vertex: position (3) + normal (3).
const Stride = 6

// Vertex is one emitted vertex-instance.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
}

// Mesh is an interleaved position/normal buffer ready for upload.
//
// The first Offset vertices came from triangle faces and are drawn as the
// primary region; the rest came from quads. The split is only clean when
// every triangle precedes every quad in the source, since vertices are
// emitted in file order.
type Mesh struct {
	Data   []float32
	Offset int
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Load parses OBJ text and builds its vertex buffer.
func Load(data []byte) (*Mesh, error) {
	obj, err := formats.ParseOBJ(data)
	if err != nil {
		return nil, err
	}
	return Build(obj), nil
}

// Build flattens the faces of obj in order. Quads are fanned from their
// first corner into (A,B,C) and (A,C,D).
func Build(obj *formats.OBJ) *Mesh {
	m := &Mesh{}
	for _, face := range obj.Faces {
		for _, tri := range Triangulate(obj, face) {
			for _, v := range tri {
				m.append(v)
			}
		}
		if !face.IsQuad() {
			m.Offset += 3
		}
	}
	return m
}

// Triangulate resolves a face into one triangle, or two for a quad.
func Triangulate(obj *formats.OBJ, face formats.Face) [][3]Vertex {
	vert := func(i int) Vertex {
		ref := face.Refs[i]
		return Vertex{
			Position: obj.Positions[ref.Position],
			Normal:   obj.Normals[ref.Normal],
		}
	}

	if face.IsQuad() {
		a, b, c, d := vert(0), vert(1), vert(2), vert(3)
		return [][3]Vertex{{a, b, c}, {a, c, d}}
	}
	return [][3]Vertex{{vert(0), vert(1), vert(2)}}
}

func (m *Mesh) append(v Vertex) {
	m.Data = append(m.Data, v.Position[:]...)
	m.Data = append(m.Data, v.Normal[:]...)
}

// Merge concatenates meshes in order. Offsets are summed, so the merged
// primary region is [0, sum of offsets) exactly as if every face had been
// appended to one buffer.
func Merge(meshes ...*Mesh) *Mesh {
	size := 0
	for _, m := range meshes {
		size += len(m.Data)
	}

	out := &Mesh{Data: make([]float32, 0, size)}
	for _, m := range meshes {
		out.Data = append(out.Data, m.Data...)
		out.Offset += m.Offset
	}
	return out
}

// VertexCount returns the number of vertex-instances in the buffer.
func (m *Mesh) VertexCount() int {
	return len(m.Data) / Stride
}

// Vertex returns the i-th vertex-instance.
func (m *Mesh) Vertex(i int) Vertex {
	base := i * Stride
	var v Vertex
	copy(v.Position[:], m.Data[base:base+3])
	copy(v.Normal[:], m.Data[base+3:base+6])
	return v
}

// Bounds returns the bounding box of all positions. Empty meshes have zero bounds.
func (m *Mesh) Bounds() Bounds {
	n := m.VertexCount()
	if n == 0 {
		return Bounds{}
	}

	first := math.V3(m.Vertex(0).Position)
	b := Bounds{Min: first, Max: first}
	for i := 1; i < n; i++ {
		p := math.V3(m.Vertex(i).Position)
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}
