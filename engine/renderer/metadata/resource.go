package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Binary resource type (SPIR-V). */
	ResourceTypeBinary ResourceType = iota
	/** @brief Image resource type. */
	ResourceTypeImage
	/** @brief Mesh resource type (OBJ). */
	ResourceTypeMesh
	/** @brief Shader source, watched but not loaded. */
	ResourceTypeShader
	/** @brief Unknown file type. */
	ResourceTypeUnknown
)

func (r ResourceType) String() string {
	switch r {
	case ResourceTypeBinary:
		return "binary"
	case ResourceTypeImage:
		return "image"
	case ResourceTypeMesh:
		return "mesh"
	case ResourceTypeShader:
		return "shader"
	}
	return "unknown"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The resource type. */
	Type ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. []uint32, *ImageData or *MeshData depending on Type. */
	Data interface{}
}
