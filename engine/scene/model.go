package scene

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

// GPU is the part of the renderer models upload through.
type GPU interface {
	UploadMesh(data *metadata.MeshData) (metadata.MeshHandle, error)
	DestroyMesh(handle metadata.MeshHandle)
	UploadTexture(data *metadata.ImageData) (metadata.TextureHandle, error)
	DestroyTexture(handle metadata.TextureHandle)
}

/**
 * @brief A mesh plus its diffuse texture, shared by every instance drawing it.
 * GPU resources are written once by Upload and released with the last reference.
 */
type Model struct {
	ID   uuid.UUID
	Name string

	Mesh    *metadata.MeshData
	Texture *metadata.ImageData

	MeshHandle    metadata.MeshHandle
	TextureHandle metadata.TextureHandle

	gpu  GPU
	refs int
}

func NewModel(name string, mesh *metadata.MeshData, texture *metadata.ImageData) *Model {
	m := &Model{
		Name:    name,
		Mesh:    mesh,
		Texture: texture,
	}
	m.ID = core.IdentifierAcquireNewID(m)
	return m
}

// Upload creates the vertex, index and texture resources and takes the
// first reference.
func (m *Model) Upload(gpu GPU) error {
	if m.gpu != nil {
		return fmt.Errorf("model `%s` is already uploaded", m.Name)
	}
	if err := m.Mesh.ValidateTriangles(); err != nil {
		return fmt.Errorf("model `%s`: %w", m.Name, err)
	}

	meshHandle, err := gpu.UploadMesh(m.Mesh)
	if err != nil {
		return err
	}
	if m.Texture != nil {
		textureHandle, err := gpu.UploadTexture(m.Texture)
		if err != nil {
			gpu.DestroyMesh(meshHandle)
			return err
		}
		m.TextureHandle = textureHandle
	}
	m.MeshHandle = meshHandle
	m.gpu = gpu
	m.refs = 1

	core.LogDebug("model `%s` (%s) uploaded: %d vertices, %d indices", m.Name, m.ID, m.Mesh.VertexCount(), m.Mesh.IndexCount())
	return nil
}

func (m *Model) Retain() *Model {
	m.refs++
	return m
}

// Release drops a reference. The GPU resources go away with the last one.
func (m *Model) Release() {
	if m.refs == 0 {
		core.LogWarn("model `%s` released with no references held", m.Name)
		return
	}
	m.refs--
	if m.refs > 0 {
		return
	}

	if m.gpu != nil {
		if m.TextureHandle != 0 {
			m.gpu.DestroyTexture(m.TextureHandle)
			m.TextureHandle = 0
		}
		m.gpu.DestroyMesh(m.MeshHandle)
		m.MeshHandle = 0
		m.gpu = nil
	}
	if err := core.IdentifierReleaseID(m.ID); err != nil {
		core.LogWarn(err.Error())
	}
	core.LogDebug("model `%s` destroyed", m.Name)
}

func (m *Model) RefCount() int { return m.refs }

func (m *Model) IsUploaded() bool { return m.gpu != nil }
