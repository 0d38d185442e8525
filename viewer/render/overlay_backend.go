package render

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/rigview-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// overlayShaderSource is the WGSL for the overlay pipelines. Vertices arrive
// pre-transformed to normalized device coordinates with a straight-alpha
// color; the fragment stage passes the color through.
const overlayShaderSource = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
};

@vertex
fn vs_main(@location(0) position: vec2<f32>, @location(1) color: vec4<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(position, 0.0, 1.0);
    out.color = color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

// overlayFloatsPerVertex is the vertex layout stride in float32s: vec2
// position + vec4 color.
const overlayFloatsPerVertex = 6

// OverlayBackend rasterizes a render tree's draw list onto a window surface.
// It owns the wgpu instance, surface, device, and the two overlay pipelines
// (line list and triangle list).
type OverlayBackend interface {
	// Configure (re)configures the surface and must be called once before
	// the first frame and again whenever the window is resized.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	Configure(width, height int)

	// RenderFrame collects the tree's draw list and renders it. Pixel
	// coordinates are converted to normalized device coordinates using the
	// tree's viewport size.
	//
	// Parameters:
	//   - t: the render tree to draw
	//
	// Returns:
	//   - error: error if the surface texture could not be acquired
	RenderFrame(t Tree) error

	// Release frees GPU resources held by the backend.
	Release()
}

// overlayBackend implements OverlayBackend on wgpu.
type overlayBackend struct {
	mu sync.Mutex

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat *wgpu.TextureFormat

	linePipeline *wgpu.RenderPipeline
	triPipeline  *wgpu.RenderPipeline

	lineBuffer *wgpu.Buffer
	triBuffer  *wgpu.Buffer
	lineCap    uint64
	triCap     uint64

	lineScratch []float32
	triScratch  []float32

	clearColor wgpu.Color
}

var _ OverlayBackend = &overlayBackend{}

// NewOverlayBackend creates an OverlayBackend for the given surface
// descriptor. Panics if no compatible adapter or device is available, since
// the viewer cannot run without a render surface.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor from the window
//
// Returns:
//   - OverlayBackend: the initialized backend (surface not yet configured)
func NewOverlayBackend(surfaceDescriptor *wgpu.SurfaceDescriptor) OverlayBackend {
	runtime.LockOSThread()

	b := &overlayBackend{
		instance:   wgpu.CreateInstance(nil),
		clearColor: wgpu.Color{R: 0.12, G: 0.12, B: 0.14, A: 1.0},
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: b.surface,
	})
	if err != nil {
		panic(fmt.Sprintf("render: failed to request adapter: %v", err))
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Overlay Device",
	})
	if err != nil {
		panic(fmt.Sprintf("render: failed to request device: %v", err))
	}
	b.device = device
	b.queue = device.GetQueue()

	return b
}

func (b *overlayBackend) Configure(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	// Pipelines depend on the surface format, so they are built on first
	// configure and reused across resizes.
	if b.linePipeline == nil {
		b.linePipeline = b.buildPipeline("Overlay Lines", wgpu.PrimitiveTopologyLineList)
		b.triPipeline = b.buildPipeline("Overlay Triangles", wgpu.PrimitiveTopologyTriangleList)
	}
}

// buildPipeline creates one overlay render pipeline for the given topology.
// Both pipelines share the overlay shader module and vertex layout and use
// standard straight-alpha blending.
func (b *overlayBackend) buildPipeline(label string, topology wgpu.PrimitiveTopology) *wgpu.RenderPipeline {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: overlayShaderSource,
		},
	})
	if err != nil {
		panic(fmt.Sprintf("render: failed to create overlay shader module: %v", err))
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: label,
	})
	if err != nil {
		panic(fmt.Sprintf("render: failed to create overlay pipeline layout: %v", err))
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: overlayFloatsPerVertex * 4,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format: *b.surfaceFormat,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorSrcAlpha,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
						Alpha: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
					},
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		panic(fmt.Sprintf("render: failed to create overlay pipeline %q: %v", label, err))
	}
	return created
}

func (b *overlayBackend) RenderFrame(t Tree) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surfaceFormat == nil {
		return fmt.Errorf("render: surface not configured")
	}

	var list DrawList
	t.Draw(&list)
	width, height := t.ViewportSize()

	lineVerts, triVerts := b.flatten(&list, float32(width), float32(height))
	b.uploadVertices(lineVerts, triVerts)

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.clearColor,
			},
		},
	})

	// Quads render first so outlines and guides paint over fills.
	if n := uint32(len(triVerts) / overlayFloatsPerVertex); n > 0 {
		pass.SetPipeline(b.triPipeline)
		pass.SetVertexBuffer(0, b.triBuffer, 0, uint64(len(triVerts))*4)
		pass.Draw(n, 1, 0, 0)
	}
	if n := uint32(len(lineVerts) / overlayFloatsPerVertex); n > 0 {
		pass.SetPipeline(b.linePipeline)
		pass.SetVertexBuffer(0, b.lineBuffer, 0, uint64(len(lineVerts))*4)
		pass.Draw(n, 1, 0, 0)
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		view.Release()
		surfaceTexture.Release()
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	b.surface.Present()
	view.Release()
	surfaceTexture.Release()

	return nil
}

// flatten converts the draw list's pixel-space primitives into NDC vertex
// streams for the line and triangle pipelines. Each quad expands to two
// triangles.
func (b *overlayBackend) flatten(list *DrawList, width, height float32) (lineVerts, triVerts []float32) {
	if width <= 0 || height <= 0 {
		return nil, nil
	}

	toNDC := func(v common.Vec2) (float32, float32) {
		return v.X/width*2 - 1, 1 - v.Y/height*2
	}

	b.lineScratch = b.lineScratch[:0]
	for _, l := range list.Lines {
		x0, y0 := toNDC(l.From)
		x1, y1 := toNDC(l.To)
		c := l.Color
		b.lineScratch = append(b.lineScratch,
			x0, y0, c.R, c.G, c.B, c.A,
			x1, y1, c.R, c.G, c.B, c.A,
		)
	}

	b.triScratch = b.triScratch[:0]
	for _, q := range list.Quads {
		x0, y0 := toNDC(common.Vec2{X: q.Rect.X, Y: q.Rect.Y})
		x1, y1 := toNDC(common.Vec2{X: q.Rect.X + q.Rect.W, Y: q.Rect.Y + q.Rect.H})
		c := q.Color
		b.triScratch = append(b.triScratch,
			x0, y0, c.R, c.G, c.B, c.A,
			x1, y0, c.R, c.G, c.B, c.A,
			x1, y1, c.R, c.G, c.B, c.A,
			x0, y0, c.R, c.G, c.B, c.A,
			x1, y1, c.R, c.G, c.B, c.A,
			x0, y1, c.R, c.G, c.B, c.A,
		)
	}

	return b.lineScratch, b.triScratch
}

// uploadVertices writes the vertex streams to the GPU, growing the persistent
// buffers when the streams exceed their current capacity.
func (b *overlayBackend) uploadVertices(lineVerts, triVerts []float32) {
	b.lineBuffer, b.lineCap = b.ensureBuffer("Overlay Line Vertices", b.lineBuffer, b.lineCap, uint64(len(lineVerts))*4)
	b.triBuffer, b.triCap = b.ensureBuffer("Overlay Triangle Vertices", b.triBuffer, b.triCap, uint64(len(triVerts))*4)

	if len(lineVerts) > 0 {
		b.queue.WriteBuffer(b.lineBuffer, 0, common.SliceToBytes(lineVerts))
	}
	if len(triVerts) > 0 {
		b.queue.WriteBuffer(b.triBuffer, 0, common.SliceToBytes(triVerts))
	}
}

// ensureBuffer returns a vertex buffer with at least size bytes of capacity,
// reusing the existing buffer when it is large enough.
func (b *overlayBackend) ensureBuffer(label string, buf *wgpu.Buffer, capacity, size uint64) (*wgpu.Buffer, uint64) {
	if size == 0 || size <= capacity {
		return buf, capacity
	}
	if buf != nil {
		buf.Release()
	}

	// Round capacity up to the next power of two to amortize regrowth.
	newCap := uint64(256)
	for newCap < size {
		newCap *= 2
	}
	created, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             newCap,
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		panic(fmt.Sprintf("render: failed to create %s buffer: %v", label, err))
	}
	return created, newCap
}

func (b *overlayBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lineBuffer != nil {
		b.lineBuffer.Release()
		b.lineBuffer = nil
	}
	if b.triBuffer != nil {
		b.triBuffer.Release()
		b.triBuffer = nil
	}
	if b.linePipeline != nil {
		b.linePipeline.Release()
		b.linePipeline = nil
	}
	if b.triPipeline != nil {
		b.triPipeline.Release()
		b.triPipeline = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
