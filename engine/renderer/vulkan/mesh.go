package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

// VulkanMesh holds the device local vertex and index buffers of one mesh.
// Both are written once at upload.
type VulkanMesh struct {
	Layout       metadata.VertexLayout
	VertexBuffer *VulkanBuffer
	IndexBuffer  *VulkanBuffer
	VertexCount  uint32
	IndexCount   uint32
}

// MeshUpload validates the mesh and uploads both buffers through staging.
// The buffers keep TRANSFER_SRC so they can be read back.
func MeshUpload(context *VulkanContext, data *metadata.MeshData) (*VulkanMesh, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	transferSrc := vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit)
	vertexBuffer, err := BufferUploadStaged(context, data.VertexBytes(), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)|transferSrc)
	if err != nil {
		return nil, err
	}
	indexBuffer, err := BufferUploadStaged(context, data.IndexBytes(), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)|transferSrc)
	if err != nil {
		vertexBuffer.Destroy(context)
		return nil, err
	}

	return &VulkanMesh{
		Layout:       data.Layout,
		VertexBuffer: vertexBuffer,
		IndexBuffer:  indexBuffer,
		VertexCount:  data.VertexCount(),
		IndexCount:   data.IndexCount(),
	}, nil
}

// ReadBack returns the mesh as stored on the device.
func (m *VulkanMesh) ReadBack(context *VulkanContext) (*metadata.MeshData, error) {
	vertexBytes, err := BufferReadBack(context, m.VertexBuffer)
	if err != nil {
		return nil, err
	}
	indexBytes, err := BufferReadBack(context, m.IndexBuffer)
	if err != nil {
		return nil, err
	}
	vertices, err := metadata.DecodeVertices(m.Layout, vertexBytes)
	if err != nil {
		return nil, err
	}
	indices, err := metadata.DecodeIndices(indexBytes)
	if err != nil {
		return nil, err
	}
	return &metadata.MeshData{Layout: m.Layout, Vertices: vertices, Indices: indices}, nil
}

func (m *VulkanMesh) Destroy(context *VulkanContext) {
	if m.VertexBuffer != nil {
		m.VertexBuffer.Destroy(context)
	}
	if m.IndexBuffer != nil {
		m.IndexBuffer.Destroy(context)
	}
}
