package engine

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"asciimosaic/pkg/layout"
	"asciimosaic/pkg/shader"
)

// quadIndices are two counter-clockwise triangles over quadVertices
var quadIndices = []uint32{0, 1, 2, 2, 3, 0}

// quadVertices returns an edge x edge square in the XY plane centered on the
// origin, interleaved as position (3) and texture coordinate (2).
func quadVertices(edge float32) []float32 {
	h := edge / 2
	return []float32{
		-h, -h, 0, 0, 0, // bottom left
		h, -h, 0, 1, 0, // bottom right
		h, h, 0, 1, 1, // top right
		-h, h, 0, 0, 1, // top left
	}
}

// InstancedMesh is one billboard quad drawn once per layout instance
type InstancedMesh struct {
	vao       uint32
	vbo       uint32
	ebo       uint32
	instances [3]uint32
	count     int32
}

// NewInstancedMesh uploads the quad and the per-instance attributes
func NewInstancedMesh(edge float32, attrs *layout.AttributeSet) (*InstancedMesh, error) {
	if attrs == nil || attrs.Len() == 0 {
		return nil, fmt.Errorf("instanced mesh needs at least one instance")
	}
	if edge <= 0 {
		return nil, fmt.Errorf("invalid billboard edge %v", edge)
	}

	m := &InstancedMesh{count: int32(attrs.Len())}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	vertices := quadVertices(edge)
	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	stride := int32(5 * 4)
	vertexLoc := shader.AttributeLocations[shader.AttrVertex]
	uvLoc := shader.AttributeLocations[shader.AttrUV]
	gl.EnableVertexAttribArray(vertexLoc)
	gl.VertexAttribPointer(vertexLoc, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(uvLoc)
	gl.VertexAttribPointer(uvLoc, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(quadIndices)*4, gl.Ptr(quadIndices), gl.STATIC_DRAW)

	gl.GenBuffers(int32(len(m.instances)), &m.instances[0])
	perInstance := []struct {
		name       string
		data       []float32
		components int32
	}{
		{shader.AttrPixelUV, attrs.PixelUV, layout.PixelUVComponents},
		{shader.AttrRandom, attrs.Random, layout.RandomComponents},
		{shader.AttrPosition, attrs.Position, layout.PositionComponents},
	}
	for i, a := range perInstance {
		loc := shader.AttributeLocations[a.name]
		gl.BindBuffer(gl.ARRAY_BUFFER, m.instances[i])
		gl.BufferData(gl.ARRAY_BUFFER, len(a.data)*4, gl.Ptr(a.data), gl.STATIC_DRAW)
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointer(loc, a.components, gl.FLOAT, false, a.components*4, gl.PtrOffset(0))
		gl.VertexAttribDivisor(loc, 1)
	}

	gl.BindVertexArray(0)
	return m, nil
}

// Count returns the number of instances
func (m *InstancedMesh) Count() int {
	return int(m.count)
}

// Draw issues one instanced draw call with the currently bound program
func (m *InstancedMesh) Draw() {
	gl.BindVertexArray(m.vao)
	gl.DrawElementsInstanced(gl.TRIANGLES, int32(len(quadIndices)), gl.UNSIGNED_INT, nil, m.count)
	gl.BindVertexArray(0)
}

// Close releases the buffers
func (m *InstancedMesh) Close() {
	gl.DeleteBuffers(int32(len(m.instances)), &m.instances[0])
	gl.DeleteBuffers(1, &m.ebo)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteVertexArrays(1, &m.vao)
}
