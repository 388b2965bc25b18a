package scene

import (
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

// Scene is a flat list of instances seen through one camera.
type Scene struct {
	Camera    *Camera
	Instances []*Instance
}

func New(camera *Camera) *Scene {
	return &Scene{Camera: camera}
}

func (s *Scene) Add(instance *Instance) {
	s.Instances = append(s.Instances, instance)
}

// Animate advances every instance by dt seconds.
func (s *Scene) Animate(dt float32) {
	for _, instance := range s.Instances {
		instance.Animate(dt)
	}
}

// Packet snapshots the camera and the model matrices. Instances sharing a
// mesh are grouped into one draw, in first seen order.
func (s *Scene) Packet(deltaTime float64) *metadata.RenderPacket {
	packet := &metadata.RenderPacket{
		DeltaTime:  deltaTime,
		View:       s.Camera.View,
		Projection: s.Camera.Projection,
	}

	draws := map[metadata.MeshHandle]int{}
	for _, instance := range s.Instances {
		model := instance.Model
		if model == nil || !model.IsUploaded() {
			continue
		}
		idx, ok := draws[model.MeshHandle]
		if !ok {
			idx = len(packet.Draws)
			draws[model.MeshHandle] = idx
			packet.Draws = append(packet.Draws, metadata.DrawRef{
				Mesh:       model.MeshHandle,
				IndexCount: model.Mesh.IndexCount(),
			})
		}
		packet.Draws[idx].Models = append(packet.Draws[idx].Models, instance.ModelMatrix())
	}
	return packet
}

// Destroy drops every instance, releasing models no one else holds.
func (s *Scene) Destroy() {
	for _, instance := range s.Instances {
		instance.Destroy()
	}
	s.Instances = nil
}
