package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Grid builds a flat quad grid on the XZ plane at height y, spanning
// [-halfSize, halfSize] on both axes with n vertices per side.
// Vertices are laid out row-major: index = row*n + col, row along Z.
func Grid(name string, n int, halfSize, y float64) *Mesh {
	m := NewMesh(name)
	if n < 2 {
		return m
	}

	step := 2 * halfSize / float64(n-1)
	m.Vertices = make([]Vertex, 0, n*n)
	for row := 0; row < n; row++ {
		z := -halfSize + float64(row)*step
		for col := 0; col < n; col++ {
			x := -halfSize + float64(col)*step
			m.Vertices = append(m.Vertices, Vertex{x, y, z})
		}
	}

	for row := 0; row < n-1; row++ {
		for col := 0; col < n-1; col++ {
			a := row*n + col
			b := a + 1
			c := a + n + 1
			d := a + n
			m.AddFace(Face{a, d, c, b}, "grid")
		}
	}
	return m
}

// Ring appends a horizontal ring of segments vertices at height y and
// returns the loop describing it. The first vertex lies on +Z.
func Ring(m *Mesh, label string, segments int, radius, y float64) Loop {
	start := len(m.Vertices)
	for i := 0; i < segments; i++ {
		a := ringAngle(i, segments)
		m.AddVertex(Vertex{radius * math.Sin(a), y, radius * math.Cos(a)})
	}
	l := Loop{Label: label, Height: y, Radius: radius, Start: start, Count: segments}
	m.Loops = append(m.Loops, l)
	return l
}

// Bridge joins two rings of equal vertex count with quads and returns the
// indices of the new faces.
func Bridge(m *Mesh, lower, upper Loop, groups ...string) []int {
	n := lower.Count
	faces := make([]int, 0, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		f := Face{lower.Start + i, lower.Start + j, upper.Start + j, upper.Start + i}
		faces = append(faces, m.AddFace(f, groups...))
	}
	return faces
}

// Cap closes a ring with a triangle fan around a new centre vertex.
// up selects the winding so the cap faces +Y.
func Cap(m *Mesh, l Loop, up bool, groups ...string) {
	centre := m.AddVertex(Vertex{0, l.Height, 0})
	n := l.Count
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if up {
			m.AddFace(Face{centre, l.Start + j, l.Start + i}, groups...)
		} else {
			m.AddFace(Face{centre, l.Start + i, l.Start + j}, groups...)
		}
	}
}

// Dome closes a ring with a hemisphere of the ring's radius and the given
// height, using stacks intermediate rings and a pole vertex.
func Dome(m *Mesh, base Loop, height float64, stacks int, groups ...string) {
	if stacks < 1 {
		stacks = 1
	}
	prev := base
	for s := 1; s < stacks; s++ {
		theta := float64(s) / float64(stacks) * math.Pi / 2
		r := base.Radius * math.Cos(theta)
		y := base.Height + height*math.Sin(theta)
		next := Ring(m, base.Label, base.Count, r, y)
		Bridge(m, prev, next, groups...)
		prev = next
	}

	pole := m.AddVertex(Vertex{0, base.Height + height, 0})
	n := prev.Count
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		m.AddFace(Face{prev.Start + i, prev.Start + j, pole}, groups...)
	}
}

// Transform applies mat to every vertex of a copy of m.
func Transform(m *Mesh, mat mgl64.Mat4) *Mesh {
	out := m.Clone()
	for i, v := range out.Vertices {
		out.Vertices[i] = mgl64.TransformCoordinate(v, mat)
	}
	return out
}

// AngleAt returns the angle around +Y of vertex i of a ring with the given
// segment count, measured from +Z.
func AngleAt(i, segments int) float64 {
	return ringAngle(i, segments)
}

func ringAngle(i, segments int) float64 {
	return 2 * math.Pi * float64(i) / float64(segments)
}
