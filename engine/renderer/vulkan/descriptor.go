package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

const (
	uboBinding     uint32 = 0
	samplerBinding uint32 = 1
)

// DescriptorSetLayoutCreate builds the single set layout: the view-projection
// UBO for the vertex stage and a combined image sampler for the fragment stage.
func DescriptorSetLayoutCreate(context *VulkanContext) (vk.DescriptorSetLayout, error) {
	bindings := []vk.DescriptorSetLayoutBinding{
		{
			Binding:         uboBinding,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         samplerBinding,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var layout vk.DescriptorSetLayout
	if err := vkCheck(vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo, context.Allocator, &layout), "vkCreateDescriptorSetLayout"); err != nil {
		return nil, err
	}
	return layout, nil
}

// DescriptorPoolCreate sizes a pool for count sets of the layout above.
func DescriptorPoolCreate(context *VulkanContext, count uint32) (vk.DescriptorPool, error) {
	poolSizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: count},
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: count},
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       count,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}

	var pool vk.DescriptorPool
	if err := vkCheck(vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolInfo, context.Allocator, &pool), "vkCreateDescriptorPool"); err != nil {
		return nil, err
	}
	return pool, nil
}

// DescriptorSetsAllocate allocates count sets from pool, one call per set.
// They are freed together with the pool.
func DescriptorSetsAllocate(context *VulkanContext, pool vk.DescriptorPool, layout vk.DescriptorSetLayout, count uint32) ([]vk.DescriptorSet, error) {
	sets := make([]vk.DescriptorSet, count)
	for i := range sets {
		var set vk.DescriptorSet
		allocInfo := vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     pool,
			DescriptorSetCount: 1,
			PSetLayouts:        []vk.DescriptorSetLayout{layout},
		}
		if err := vkCheck(vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocInfo, &set), "vkAllocateDescriptorSets"); err != nil {
			return nil, err
		}
		sets[i] = set
	}
	return sets, nil
}

// DescriptorSetWrite points set at the uniform buffer and the texture.
func DescriptorSetWrite(context *VulkanContext, set vk.DescriptorSet, ubo *VulkanBuffer, texture *VulkanTexture) {
	writes := []vk.WriteDescriptorSet{
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      uboBinding,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			PBufferInfo: []vk.DescriptorBufferInfo{{
				Buffer: ubo.Handle,
				Offset: 0,
				Range:  vk.DeviceSize(metadata.ViewProjUBOSize),
			}},
		},
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      samplerBinding,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			PImageInfo: []vk.DescriptorImageInfo{{
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
				ImageView:   texture.Image.View,
				Sampler:     texture.Sampler,
			}},
		},
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)
}
