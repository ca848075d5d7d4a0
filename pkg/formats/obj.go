package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrMalformedFace   = errors.New("malformed face")
	ErrMalformedVertex = errors.New("malformed vertex")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// ParseError reports the line an OBJ error was found on.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// VertexRef references a position and a normal of an OBJ file (0-based).
type VertexRef struct {
	Position int
	Normal   int
}

// Face is a triangle or quad, in file winding order.
type Face struct {
	Refs []VertexRef
}

// IsQuad reports whether the face has four corners.
func (f Face) IsQuad() bool {
	return len(f.Refs) == 4
}

// OBJ holds the positions, normals and faces read from an OBJ file.
// Only the v, vn and f statements are understood.
type OBJ struct {
	Positions [][3]float32
	Normals   [][3]float32
	Faces     []Face
}

// ParseOBJ parses OBJ text. Every face index is checked against the tables
// built so far, so positions and normals must be declared before use.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			var v [3]float32
			if v, err = parseVec3(fields[1:]); err == nil {
				obj.Positions = append(obj.Positions, v)
			}
		case "vn":
			var n [3]float32
			if n, err = parseVec3(fields[1:]); err == nil {
				obj.Normals = append(obj.Normals, n)
			}
		case "f":
			var face Face
			if face, err = obj.parseFace(fields[1:]); err == nil {
				obj.Faces = append(obj.Faces, face)
			}
		}
		if err != nil {
			return nil, &ParseError{Line: lineNum, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	return obj, nil
}

func parseVec3(fields []string) ([3]float32, error) {
	var v [3]float32
	if len(fields) < 3 {
		return v, fmt.Errorf("%w: expected 3 components, got %d", ErrMalformedVertex, len(fields))
	}
	for i := 0; i < 3; i++ {
		// Out-of-range values parse as +/-Inf.
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return v, fmt.Errorf("%w: component %q", ErrMalformedVertex, fields[i])
		}
		v[i] = float32(f)
	}
	return v, nil
}

func (o *OBJ) parseFace(fields []string) (Face, error) {
	if len(fields) < 3 || len(fields) > 4 {
		return Face{}, fmt.Errorf("%w: %d vertex references", ErrMalformedFace, len(fields))
	}

	face := Face{Refs: make([]VertexRef, 0, len(fields))}
	for _, field := range fields {
		// p/t/n, the texture coordinate is ignored
		parts := strings.Split(field, "/")
		if len(parts) < 3 {
			return Face{}, fmt.Errorf("%w: reference %q has no normal", ErrMalformedFace, field)
		}

		pos, err := resolveIndex(parts[0], len(o.Positions))
		if err != nil {
			return Face{}, fmt.Errorf("position of %q: %w", field, err)
		}
		norm, err := resolveIndex(parts[2], len(o.Normals))
		if err != nil {
			return Face{}, fmt.Errorf("normal of %q: %w", field, err)
		}
		face.Refs = append(face.Refs, VertexRef{Position: pos, Normal: norm})
	}
	return face, nil
}

// resolveIndex converts a 1-based OBJ index to a 0-based one bounded by n.
func resolveIndex(s string, n int) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrMalformedFace, s)
	}
	if idx < 1 || idx > n {
		return 0, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, idx, n)
	}
	return idx - 1, nil
}
