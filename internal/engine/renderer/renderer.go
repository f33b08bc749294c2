// Package renderer draws the teaser scene with OpenGL 4.1 core.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/logo-teaser/internal/engine/camera"
	"github.com/Faultbox/logo-teaser/internal/engine/debug"
	"github.com/Faultbox/logo-teaser/internal/engine/renderer/shaders"
	"github.com/Faultbox/logo-teaser/internal/engine/scene"
	"github.com/Faultbox/logo-teaser/internal/engine/shader"
	"github.com/Faultbox/logo-teaser/internal/logger"
	"github.com/Faultbox/logo-teaser/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [3]float32

	Exposure     float32 // defaults to 1
	EnvIntensity float32
}

// gpuMesh is a mesh uploaded to VAO/VBO/EBO.
type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	log    *zap.Logger

	lit     *shader.Program
	line    *shader.Program
	overlay *shader.Program

	meshes map[*scene.Mesh]*gpuMesh

	lineVAO, lineVBO uint32
	overlayVAO       uint32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if cfg.Exposure <= 0 {
		cfg.Exposure = 1
	}
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
		meshes: make(map[*scene.Mesh]*gpuMesh),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)
	gl.ClearColor(cfg.ClearColor[0], cfg.ClearColor[1], cfg.ClearColor[2], 1.0)

	var err error
	if r.lit, err = shader.Compile("lit", shaders.LitVertexShader, shaders.LitFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	if r.line, err = shader.Compile("line", shaders.LineVertexShader, shaders.LineFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	if r.overlay, err = shader.Compile("overlay", shaders.OverlayVertexShader, shaders.OverlayFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	r.createLineBuffers()
	gl.GenVertexArrays(1, &r.overlayVAO)

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer", zap.Int("meshes", len(r.meshes)))
	for m := range r.meshes {
		r.release(m)
	}
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
		gl.DeleteBuffers(1, &r.lineVBO)
		r.lineVAO, r.lineVBO = 0, 0
	}
	if r.overlayVAO != 0 {
		gl.DeleteVertexArrays(1, &r.overlayVAO)
		r.overlayVAO = 0
	}
	for _, p := range []*shader.Program{r.lit, r.line, r.overlay} {
		if p != nil {
			p.Delete()
		}
	}
}

// Resize sets the viewport to the drawable size in pixels. Sizes are clamped to 1.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = max(width, 1)
	r.config.Height = max(height, 1)
	gl.Viewport(0, 0, int32(r.config.Width), int32(r.config.Height))
	r.log.Debug("renderer resized",
		zap.Int("width", r.config.Width),
		zap.Int("height", r.config.Height),
	)
}

// Size returns the current viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Upload sends every mesh under node to the GPU. Meshes already resident are skipped.
func (r *Renderer) Upload(node *scene.Node) {
	if node == nil {
		return
	}
	var uploaded, triangles int
	node.Traverse(func(n *scene.Node) {
		if n.Mesh == nil || r.meshes[n.Mesh] != nil || len(n.Mesh.Indices) == 0 || len(n.Mesh.Vertices) == 0 {
			return
		}
		r.meshes[n.Mesh] = uploadMesh(n.Mesh)
		uploaded++
		triangles += n.Mesh.TriangleCount()
	})
	if uploaded > 0 {
		r.log.Debug("meshes uploaded",
			zap.String("node", node.Name),
			zap.Int("meshes", uploaded),
			zap.Int("triangles", triangles),
		)
	}
}

// Release frees the GPU copies of every mesh under node.
func (r *Renderer) Release(node *scene.Node) {
	if node == nil {
		return
	}
	node.Traverse(func(n *scene.Node) {
		if n.Mesh != nil {
			r.release(n.Mesh)
		}
	})
}

func (r *Renderer) release(m *scene.Mesh) {
	gm, ok := r.meshes[m]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &gm.vao)
	gl.DeleteBuffers(1, &gm.vbo)
	gl.DeleteBuffers(1, &gm.ebo)
	delete(r.meshes, m)
}

func uploadMesh(m *scene.Mesh) *gpuMesh {
	gm := &gpuMesh{indexCount: int32(len(m.Indices))}

	gl.GenVertexArrays(1, &gm.vao)
	gl.BindVertexArray(gm.vao)

	stride := int32(unsafe.Sizeof(scene.Vertex{}))

	gl.GenBuffers(1, &gm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*int(stride), gl.Ptr(m.Vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &gm.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	// Normal (location 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	return gm
}

// Render clears the frame and draws every visible mesh in s as seen from cam.
// Meshes not yet uploaded are uploaded on first use.
func (r *Renderer) Render(s *scene.Scene, cam *camera.Perspective) {
	gl.ClearColor(s.ClearColor[0], s.ClearColor[1], s.ClearColor[2], 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	drawables := s.Meshes()
	if len(drawables) == 0 {
		return
	}

	r.lit.Use()
	r.lit.SetMat4("uViewProj", cam.ViewProjection())
	r.lit.SetVec3("uCameraPos", cam.Position.Array())
	r.lit.SetVec3("uLightDir", s.Light.Direction)
	r.lit.SetVec3("uLightRadiance", s.Light.Radiance())
	r.lit.SetVec3("uAmbient", s.Environment.Ambient)
	r.lit.SetVec3("uSky", s.Environment.Sky)
	r.lit.SetVec3("uGround", s.Environment.Ground)
	r.lit.SetFloat("uEnvIntensity", r.config.EnvIntensity)
	r.lit.SetFloat("uExposure", r.config.Exposure)

	for _, d := range drawables {
		gm := r.meshes[d.Node.Mesh]
		if gm == nil {
			r.Upload(d.Node)
			if gm = r.meshes[d.Node.Mesh]; gm == nil {
				continue
			}
		}
		r.lit.SetMat4("uModel", d.Model)
		r.lit.SetVec3("uBaseColor", d.Node.Mesh.Color)
		gl.BindVertexArray(gm.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, gm.indexCount, gl.UNSIGNED_INT, 0)
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) createLineBuffers() {
	gl.GenVertexArrays(1, &r.lineVAO)
	gl.BindVertexArray(r.lineVAO)

	gl.GenBuffers(1, &r.lineVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, debug.BBoxWireframeVertexCount*3*4, nil, gl.DYNAMIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)

	gl.BindVertexArray(0)
}

// DrawBounds draws b as a world-space wireframe box.
func (r *Renderer) DrawBounds(b math.Box3, cam *camera.Perspective, color [4]float32) {
	verts := debug.BoxWireframe(b, 0)
	if verts == nil {
		return
	}

	r.line.Use()
	r.line.SetMat4("uViewProj", cam.ViewProjection())
	r.line.SetVec4("uColor", color)

	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(verts)*4, gl.Ptr(verts))
	gl.DrawArrays(gl.LINES, 0, debug.BBoxWireframeVertexCount)
	gl.BindVertexArray(0)
}

// DrawOverlay blends a full-screen colour over the frame.
func (r *Renderer) DrawOverlay(color [4]float32) {
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r.overlay.Use()
	r.overlay.SetVec4("uColor", color)
	gl.BindVertexArray(r.overlayVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)

	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}
