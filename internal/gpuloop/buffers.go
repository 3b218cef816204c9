package gpuloop

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// headroomBytes is extra slack reserved on each geometric buffer grow,
// mirroring the teacher's HeadroomPayload/HeadroomTables constants in
// gpu/manager.go so a small repack doesn't force a resize every tick.
const headroomBytes = 256 * 1024

// Buffers owns the real wgpu storage buffers the shader reads: chunk
// metadata, the concatenated node/leaf arenas, the coordinate hash
// table, and the meta-grid. Lifecycle (grow-by-1.5x, CopyDst|CopySrc,
// WriteBuffer) mirrors the teacher's GpuBufferManager.ensureBuffer.
type Buffers struct {
	device *wgpu.Device

	Metadata  *wgpu.Buffer
	Nodes     *wgpu.Buffer
	Leaves    *wgpu.Buffer
	HashTable *wgpu.Buffer
	MetaGrid  *wgpu.Buffer
}

// NewBuffers wraps device; buffers are created lazily on first Upload.
func NewBuffers(device *wgpu.Device) *Buffers {
	return &Buffers{device: device}
}

// Upload repacks snap's host buffers into the GPU resources, growing
// any buffer that's now too small. All writes for one snapshot happen
// before Tick proceeds to eviction, satisfying the frame's single
// consistent-snapshot guarantee (spec.md §5 ordering guarantee (a)).
func (b *Buffers) Upload(snap *snapshot) {
	b.ensure(&b.Metadata, "gpuloop-metadata", snap.metadata)
	b.ensure(&b.Nodes, "gpuloop-nodes", snap.nodes)
	b.ensure(&b.Leaves, "gpuloop-leaves", snap.leaves)
	b.ensure(&b.HashTable, "gpuloop-hashtable", snap.hashTable)
}

// UploadMetaGrid writes the meta-grid's flat cell array, separately
// from the main repack since it's rebuilt from the cache's current
// state rather than from the snapshot (spec.md §4.8).
func (b *Buffers) UploadMetaGrid(cells []uint32) {
	data := uint32sToBytes(cells)
	b.ensure(&b.MetaGrid, "gpuloop-metagrid", data)
}

func (b *Buffers) ensure(buf **wgpu.Buffer, label string, data []byte) {
	needed := uint64(len(data) + headroomBytes)
	if needed%4 != 0 {
		needed += 4 - needed%4
	}

	current := *buf
	usage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc

	if current == nil || current.GetSize() < needed {
		size := needed
		if current != nil {
			grown := uint64(float64(current.GetSize()) * 1.5)
			if grown > size {
				size = grown
			}
		}

		newBuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            label,
			Size:             size,
			Usage:            usage,
			MappedAtCreation: false,
		})
		if err != nil {
			panic(err)
		}
		if current != nil {
			current.Release()
		}
		*buf = newBuf
	}

	if len(data) > 0 {
		b.device.GetQueue().WriteBuffer(*buf, 0, data)
	}
}
