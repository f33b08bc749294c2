// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// LitVertexShader transforms logo geometry and passes world-space normals.
//
//go:embed lit.vert
var LitVertexShader string

// LitFragmentShader shades the logo as a polished metal lit by one key light
// and the environment's sky/ground ambient.
//
//go:embed lit.frag
var LitFragmentShader string

// LineVertexShader is the vertex shader for debug line rendering.
//
//go:embed line.vert
var LineVertexShader string

// LineFragmentShader is the fragment shader for debug line rendering.
//
//go:embed line.frag
var LineFragmentShader string

// OverlayVertexShader emits a full-screen triangle from gl_VertexID.
//
//go:embed overlay.vert
var OverlayVertexShader string

// OverlayFragmentShader fills the screen with a translucent colour.
//
//go:embed overlay.frag
var OverlayFragmentShader string
