package shader

import _ "embed"

// FlatVertexShader transforms positions by the projection and model-view matrices.
//
//go:embed flat.vert
var FlatVertexShader string

// FlatFragmentShader fills every fragment with one uniform colour.
//
//go:embed flat.frag
var FlatFragmentShader string
