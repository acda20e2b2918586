// Package geometry holds the plain mesh data structures shared by the
// builders, plus the primitive mesh provider they start from.
package geometry

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/crypto/blake2b"
)

// ErrInvalidParameter is returned when builder input is out of range or
// structurally inconsistent.
var ErrInvalidParameter = errors.New("invalid parameter")

// Vertex is a 3D point. Y is up.
type Vertex = mgl64.Vec3

// Face is one polygon, as indices into Mesh.Vertices.
type Face []int

// Loop describes a horizontal ring of vertices laid down by a builder.
type Loop struct {
	Label  string  // "shell", "band", "lantern"
	Height float64 // Local Y of the ring
	Radius float64 // Distance of every ring vertex from the Y axis
	Start  int     // Index of the first vertex
	Count  int     // Number of vertices in the ring
}

// Mesh is an ordered vertex list plus polygon topology.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Faces    []Face
	Groups   map[string][]int // group name -> face indices
	Loops    []Loop
}

// NewMesh creates an empty named mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:   name,
		Groups: make(map[string][]int),
	}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(v Vertex) int {
	m.Vertices = append(m.Vertices, v)
	return len(m.Vertices) - 1
}

// AddFace appends a face and records it in the given groups.
func (m *Mesh) AddFace(f Face, groups ...string) int {
	idx := len(m.Faces)
	m.Faces = append(m.Faces, f)
	for _, g := range groups {
		m.Groups[g] = append(m.Groups[g], idx)
	}
	return idx
}

// Group returns the face indices tagged with name.
func (m *Mesh) Group(name string) []int {
	return m.Groups[name]
}

// LoopsLabelled returns the loops carrying the given label.
func (m *Mesh) LoopsLabelled(label string) []Loop {
	var out []Loop
	for _, l := range m.Loops {
		if l.Label == label {
			out = append(out, l)
		}
	}
	return out
}

// Append merges other into m, offsetting its indices. Groups and loops are
// carried over.
func (m *Mesh) Append(other *Mesh) {
	base := len(m.Vertices)
	faceBase := len(m.Faces)
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, f := range other.Faces {
		nf := make(Face, len(f))
		for i, v := range f {
			nf[i] = v + base
		}
		m.Faces = append(m.Faces, nf)
	}
	for name, faces := range other.Groups {
		for _, fi := range faces {
			m.Groups[name] = append(m.Groups[name], fi+faceBase)
		}
	}
	for _, l := range other.Loops {
		l.Start += base
		m.Loops = append(m.Loops, l)
	}
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	out := NewMesh(m.Name)
	out.Vertices = append([]Vertex(nil), m.Vertices...)
	out.Faces = make([]Face, len(m.Faces))
	for i, f := range m.Faces {
		out.Faces[i] = append(Face(nil), f...)
	}
	for name, faces := range m.Groups {
		out.Groups[name] = append([]int(nil), faces...)
	}
	out.Loops = append([]Loop(nil), m.Loops...)
	return out
}

// Bounds returns the axis-aligned bounding box. An empty mesh yields two
// zero vectors.
func (m *Mesh) Bounds() (min, max Vertex) {
	if len(m.Vertices) == 0 {
		return Vertex{}, Vertex{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], v[i])
			max[i] = math.Max(max[i], v[i])
		}
	}
	return min, max
}

// Fingerprint hashes the exact vertex bits and face indices. Two meshes with
// the same fingerprint are byte-identical.
func (m *Mesh) Fingerprint() string {
	buf := make([]byte, 0, len(m.Vertices)*24+len(m.Faces)*16)
	for _, v := range m.Vertices {
		for i := 0; i < 3; i++ {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v[i]))
		}
	}
	for _, f := range m.Faces {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(f)))
		for _, idx := range f {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(idx))
		}
	}
	sum := blake2b.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// Equal reports whether both meshes have identical vertices and faces.
func (m *Mesh) Equal(other *Mesh) bool {
	if len(m.Vertices) != len(other.Vertices) || len(m.Faces) != len(other.Faces) {
		return false
	}
	for i := range m.Vertices {
		if m.Vertices[i] != other.Vertices[i] {
			return false
		}
	}
	for i := range m.Faces {
		if len(m.Faces[i]) != len(other.Faces[i]) {
			return false
		}
		for j := range m.Faces[i] {
			if m.Faces[i][j] != other.Faces[i][j] {
				return false
			}
		}
	}
	return true
}

// IsFinite reports whether v is a usable real number.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
