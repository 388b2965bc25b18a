package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

/** @brief Parameters used when loading a model. */
type ModelParams struct {
	/** @brief Store 1-v instead of v, for images stored top row first. */
	FlipV bool
}

type ModelLoader struct{}

func (ml *ModelLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrAssetNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	var flip bool
	if p, ok := params.(*ModelParams); ok && p != nil {
		flip = p.FlipV
	}

	mesh, err := DecodeOBJ(f, flip)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &metadata.Resource{
		Name:     path,
		FullPath: path,
		Type:     metadata.ResourceTypeMesh,
		DataSize: mesh.VertexBufferSize() + mesh.IndexBufferSize(),
		Data:     mesh,
	}, nil
}

func (ml *ModelLoader) Unload(*metadata.Resource) error {
	return nil
}

// objIndex is one v/vt pair of a face corner, zero based.
type objIndex struct {
	v, vt int
}

type objDecoder struct {
	flipV bool
	line  int

	positions []mgl32.Vec3
	uvs       []mgl32.Vec2

	unique map[objIndex]uint32
	mesh   *metadata.MeshData
}

// DecodeOBJ parses positions, texture coordinates and faces into a textured
// mesh. Polygons are fanned into triangles and identical v/vt corners share
// one vertex. Normals, materials and groups are ignored.
func DecodeOBJ(r io.Reader, flipV bool) (*metadata.MeshData, error) {
	dec := &objDecoder{
		flipV:  flipV,
		unique: map[objIndex]uint32{},
		mesh:   &metadata.MeshData{Layout: metadata.VertexLayoutTextured},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		dec.line++
		if err := dec.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if err := dec.mesh.ValidateTriangles(); err != nil {
		return nil, err
	}
	return dec.mesh, nil
}

func (dec *objDecoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	switch fields[0] {
	case "v":
		vals, err := dec.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		dec.positions = append(dec.positions, mgl32.Vec3{vals[0], vals[1], vals[2]})
	case "vt":
		vals, err := dec.parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		dec.uvs = append(dec.uvs, mgl32.Vec2{vals[0], vals[1]})
	case "f":
		return dec.parseFace(fields[1:])
	}
	return nil
}

func (dec *objDecoder) parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, dec.errorf("expected %d values, got %d", n, len(fields))
	}
	vals := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, dec.errorf("%s", err)
		}
		vals[i] = float32(f)
	}
	return vals, nil
}

// parseFace handles f v1/vt1[/vn1] v2/vt2[/vn2] v3/vt3[/vn3] ...
func (dec *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return dec.errorf("face with %d corners", len(fields))
	}
	corners := make([]uint32, len(fields))
	for i, field := range fields {
		idx, err := dec.parseCorner(field)
		if err != nil {
			return err
		}
		corners[i] = dec.vertex(idx)
	}
	for i := 1; i+1 < len(corners); i++ {
		dec.mesh.Indices = append(dec.mesh.Indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

func (dec *objDecoder) parseCorner(field string) (objIndex, error) {
	parts := strings.Split(field, "/")
	if len(parts) < 2 || parts[1] == "" {
		return objIndex{}, dec.errorf("%w: face corner `%s` has no texture coordinate", core.ErrInvalidMesh, field)
	}
	v, err := dec.resolve(parts[0], len(dec.positions))
	if err != nil {
		return objIndex{}, err
	}
	vt, err := dec.resolve(parts[1], len(dec.uvs))
	if err != nil {
		return objIndex{}, err
	}
	return objIndex{v: v, vt: vt}, nil
}

// resolve turns a one based, possibly negative, OBJ index into a zero based one.
func (dec *objDecoder) resolve(s string, count int) (int, error) {
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, dec.errorf("%s", err)
	}
	var idx int
	switch {
	case val > 0:
		idx = val - 1
	case val < 0:
		idx = count + val
	default:
		return 0, dec.errorf("index 0 is not valid")
	}
	if idx < 0 || idx >= count {
		return 0, dec.errorf("%w: index %d out of range (%d defined)", core.ErrInvalidMesh, val, count)
	}
	return idx, nil
}

func (dec *objDecoder) vertex(idx objIndex) uint32 {
	if i, ok := dec.unique[idx]; ok {
		return i
	}
	uv := dec.uvs[idx.vt]
	if dec.flipV {
		uv[1] = 1 - uv[1]
	}
	i := uint32(len(dec.mesh.Vertices))
	dec.mesh.Vertices = append(dec.mesh.Vertices, metadata.Vertex{
		Position: dec.positions[idx.v],
		Color:    mgl32.Vec3{1, 1, 1},
		TexCoord: uv,
	})
	dec.unique[idx] = i
	return i
}

func (dec *objDecoder) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("obj line %d: %w", dec.line, fmt.Errorf(format, args...))
}
