package vulkan

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/platform"
	"github.com/spaghettifunk/vkscene/engine/renderer/frame"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

// PerImageCounts reports how many of each per-image object are live.
type PerImageCounts struct {
	Images         uint32
	CommandBuffers int
	Framebuffers   int
	DescriptorSets int
	UniformBuffers int
}

type VulkanRenderer struct {
	platform *platform.Platform
	config   RendererConfig
	context  *VulkanContext

	controller *frame.Controller

	meshes   map[metadata.MeshHandle]*VulkanMesh
	textures map[metadata.TextureHandle]*VulkanTexture
	nextMesh metadata.MeshHandle
	nextTex  metadata.TextureHandle

	defaultTexture *VulkanTexture
	activeTexture  metadata.TextureHandle

	vertexShader   []uint32
	fragmentShader []uint32

	FrameNumber uint64
}

func New(p *platform.Platform, config RendererConfig) *VulkanRenderer {
	if config.FramesInFlight == 0 {
		config.FramesInFlight = 2
	}
	return &VulkanRenderer{
		platform: p,
		config:   config,
		context: &VulkanContext{
			Allocator: nil,
			lockPool:  NewVulkanLockPool(),
		},
		meshes:         make(map[metadata.MeshHandle]*VulkanMesh),
		textures:       make(map[metadata.TextureHandle]*VulkanTexture),
		vertexShader:   config.VertexShader,
		fragmentShader: config.FragmentShader,
	}
}

func (vr *VulkanRenderer) Initialize() error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		err := fmt.Errorf("GetInstanceProcAddress is nil")
		core.LogError(err.Error())
		return err
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vk: %s", err)
		return err
	}

	if err := vr.createInstance(); err != nil {
		return err
	}

	if vr.config.Validation {
		if err := debugCallbackCreate(vr.context); err != nil {
			return err
		}
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.Window.CreateWindowSurface(vr.context.Instance, nil)
	if err != nil {
		core.LogError("Vulkan surface creation failed: %s", err)
		return err
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(vr.context, vr.config.MaxSamples); err != nil {
		return err
	}

	layout, err := DescriptorSetLayoutCreate(vr.context)
	if err != nil {
		return err
	}
	vr.context.DescriptorSetLayout = layout

	slots, err := FrameSlotsCreate(vr.context, vr.config.FramesInFlight)
	if err != nil {
		return err
	}
	vr.context.FrameSlots = slots

	if vr.defaultTexture, err = TextureCreate(vr.context, defaultTextureData()); err != nil {
		return err
	}

	lifecycle := frame.NewLifecycle(vr, vr.stages()...)
	vr.controller = frame.NewController(vr, lifecycle)
	if err := vr.controller.Rebuild(); err != nil && !errors.Is(err, core.ErrSwapchainBooting) {
		return err
	}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createInstance() error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         vr.config.APIVersion,
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(vr.config.ApplicationName),
		PEngineName:        VulkanSafeString("vkscene"),
	}
	if appInfo.ApiVersion == 0 {
		appInfo.ApiVersion = uint32(vk.MakeVersion(1, 0, 0))
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := vr.platform.GetRequiredExtensionNames()
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	var layers []string
	if vr.config.Validation {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)

		core.LogInfo("Validation layers enabled. Enumerating...")
		available, err := instanceLayerNames()
		if err != nil {
			return err
		}
		if !hasName(available, validationLayerName) {
			err := fmt.Errorf("required validation layer is missing: %s", validationLayerName)
			core.LogError(err.Error())
			return err
		}
		layers = []string{validationLayerName}
		core.LogInfo("All required validation layers are present.")
	}

	core.LogDebug("Required extensions: %v", requiredExtensions)
	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	var instance vk.Instance
	if err := vkCheck(vk.CreateInstance(&createInfo, vr.context.Allocator, &instance), "vkCreateInstance"); err != nil {
		return err
	}
	vr.context.Instance = instance
	if err := vk.InitInstance(instance); err != nil {
		core.LogError(err.Error())
		return err
	}

	core.LogInfo("Vulkan Instance created.")
	return nil
}

// Shutdown waits for the device to go idle and destroys everything in the
// reverse order of creation.
func (vr *VulkanRenderer) Shutdown() error {
	ctx := vr.context
	if ctx.Device == nil || ctx.Device.LogicalDevice == nil {
		vr.destroyInstance()
		return nil
	}
	if err := vr.WaitIdle(); err != nil {
		return err
	}

	if vr.controller != nil {
		vr.controller.Lifecycle().Destroy()
	}

	for handle, mesh := range vr.meshes {
		mesh.Destroy(ctx)
		delete(vr.meshes, handle)
	}
	for handle, texture := range vr.textures {
		texture.Destroy(ctx)
		delete(vr.textures, handle)
	}
	if vr.defaultTexture != nil {
		vr.defaultTexture.Destroy(ctx)
		vr.defaultTexture = nil
	}

	FrameSlotsDestroy(ctx, ctx.FrameSlots)
	ctx.FrameSlots = nil

	if ctx.DescriptorSetLayout != nil {
		vk.DestroyDescriptorSetLayout(ctx.Device.LogicalDevice, ctx.DescriptorSetLayout, ctx.Allocator)
		ctx.DescriptorSetLayout = nil
	}

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(ctx)

	vr.destroyInstance()
	return nil
}

func (vr *VulkanRenderer) destroyInstance() {
	ctx := vr.context
	if ctx.Surface != vk.NullSurface {
		core.LogDebug("Destroying Vulkan surface...")
		vk.DestroySurface(ctx.Instance, ctx.Surface, ctx.Allocator)
		ctx.Surface = vk.NullSurface
	}
	if ctx.Instance == nil {
		return
	}
	debugCallbackDestroy(ctx)

	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(ctx.Instance, ctx.Allocator)
	ctx.Instance = nil
}

// Resized records a new framebuffer size. The swapchain is rebuilt after
// the next present.
func (vr *VulkanRenderer) Resized(width, height uint32) {
	if vr.controller == nil {
		return
	}
	vr.controller.Lifecycle().NotifyResize(width, height)
	core.LogInfo("Vulkan renderer backend->resized: w/h: %d/%d", width, height)
}

// DrawFrame runs one frame. It reports false when the frame was skipped.
func (vr *VulkanRenderer) DrawFrame(packet *metadata.RenderPacket) (bool, error) {
	drawn, err := vr.controller.DrawFrame(packet)
	if drawn {
		vr.FrameNumber++
	}
	return drawn, err
}

// WaitIdle is a no-op before the logical device exists.
func (vr *VulkanRenderer) WaitIdle() error {
	if vr.context.Device == nil || vr.context.Device.LogicalDevice == nil {
		return nil
	}
	return vr.context.Device.WaitIdle()
}

// Extent is the current swapchain extent.
func (vr *VulkanRenderer) Extent() frame.Extent {
	return vr.context.Extent()
}

// Stats returns the controller counters: frames drawn, dropped and rebuilds.
func (vr *VulkanRenderer) Stats() (frames, dropped, rebuilds uint64) {
	if vr.controller == nil {
		return 0, 0, 0
	}
	return vr.controller.Frames, vr.controller.Dropped, vr.controller.Rebuilds
}

func (vr *VulkanRenderer) PerImageCounts() PerImageCounts {
	ctx := vr.context
	counts := PerImageCounts{
		CommandBuffers: len(ctx.GraphicsCommandBuffers),
		Framebuffers:   len(ctx.Framebuffers),
		DescriptorSets: len(ctx.DescriptorSets),
		UniformBuffers: len(ctx.UniformBuffers),
	}
	if ctx.Swapchain != nil {
		counts.Images = ctx.Swapchain.ImageCount
	}
	return counts
}

// UploadMesh copies the mesh into device local buffers.
func (vr *VulkanRenderer) UploadMesh(data *metadata.MeshData) (metadata.MeshHandle, error) {
	mesh, err := MeshUpload(vr.context, data)
	if err != nil {
		return 0, err
	}
	vr.nextMesh++
	vr.meshes[vr.nextMesh] = mesh
	core.LogDebug("mesh %d uploaded: %d vertices, %d indices", vr.nextMesh, mesh.VertexCount, mesh.IndexCount)
	return vr.nextMesh, nil
}

// DestroyMesh waits for the device before releasing the buffers, since any
// in-flight frame may still reference them.
func (vr *VulkanRenderer) DestroyMesh(handle metadata.MeshHandle) {
	mesh, ok := vr.meshes[handle]
	if !ok {
		return
	}
	if err := vr.WaitIdle(); err != nil {
		core.LogWarn("destroying mesh %d without idle device: %s", handle, err)
	}
	mesh.Destroy(vr.context)
	delete(vr.meshes, handle)
}

// ReadBackMesh returns the uploaded mesh as the device holds it.
func (vr *VulkanRenderer) ReadBackMesh(handle metadata.MeshHandle) (*metadata.MeshData, error) {
	mesh, ok := vr.meshes[handle]
	if !ok {
		return nil, fmt.Errorf("unknown mesh %d", handle)
	}
	return mesh.ReadBack(vr.context)
}

// UploadTexture creates the texture and binds it for every image.
func (vr *VulkanRenderer) UploadTexture(data *metadata.ImageData) (metadata.TextureHandle, error) {
	texture, err := TextureCreate(vr.context, data)
	if err != nil {
		return 0, err
	}
	return vr.addTexture(texture, vr.bindTexture)
}

// addTexture registers texture and binds it. When the bind fails the texture
// is destroyed and the previously bound one stays active.
func (vr *VulkanRenderer) addTexture(texture *VulkanTexture, bind func(metadata.TextureHandle) error) (metadata.TextureHandle, error) {
	previous := vr.activeTexture
	vr.nextTex++
	handle := vr.nextTex
	vr.textures[handle] = texture
	if err := bind(handle); err != nil {
		delete(vr.textures, handle)
		vr.activeTexture = previous
		texture.Destroy(vr.context)
		return 0, err
	}
	return handle, nil
}

func (vr *VulkanRenderer) DestroyTexture(handle metadata.TextureHandle) {
	texture, ok := vr.textures[handle]
	if !ok {
		return
	}
	if vr.activeTexture == handle {
		if err := vr.bindTexture(0); err != nil {
			core.LogWarn("rebinding default texture: %s", err)
		}
	} else if err := vr.WaitIdle(); err != nil {
		core.LogWarn("destroying texture %d without idle device: %s", handle, err)
	}
	texture.Destroy(vr.context)
	delete(vr.textures, handle)
}

func (vr *VulkanRenderer) currentTexture() *VulkanTexture {
	if texture, ok := vr.textures[vr.activeTexture]; ok {
		return texture
	}
	return vr.defaultTexture
}

// bindTexture rewrites the sampler binding of every descriptor set. Sets may
// be in use, so the device is drained first.
func (vr *VulkanRenderer) bindTexture(handle metadata.TextureHandle) error {
	vr.activeTexture = handle
	if len(vr.context.DescriptorSets) == 0 {
		return nil
	}
	if err := vr.WaitIdle(); err != nil {
		return err
	}
	for i, set := range vr.context.DescriptorSets {
		DescriptorSetWrite(vr.context, set, vr.context.UniformBuffers[i], vr.currentTexture())
	}
	return nil
}

// ReloadShaders swaps the shader binaries and schedules a rebuild so the
// pipeline picks them up.
func (vr *VulkanRenderer) ReloadShaders(vertex, fragment []uint32) {
	if len(vertex) > 0 {
		vr.vertexShader = vertex
	}
	if len(fragment) > 0 {
		vr.fragmentShader = fragment
	}
	if vr.controller != nil {
		vr.controller.Lifecycle().RequestRebuild("shader binaries changed")
	}
}

// FramebufferExtent implements frame.Host.
func (vr *VulkanRenderer) FramebufferExtent() frame.Extent {
	width, height := vr.platform.FramebufferSize()
	return frame.Extent{Width: width, Height: height}
}

// SurfaceLimits implements frame.Host.
func (vr *VulkanRenderer) SurfaceLimits() (frame.Extent, frame.Extent, error) {
	support, err := DeviceQuerySwapchainSupport(vr.context.Device.PhysicalDevice, vr.context.Surface)
	if err != nil {
		return frame.Extent{}, frame.Extent{}, err
	}
	vr.context.Device.SwapchainSupport = support
	lo, hi := surfaceLimits(support.Capabilities)
	return lo, hi, nil
}
