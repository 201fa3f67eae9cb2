package screen

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-gl/gl/v3.3-core/gl"
)

const DefaultShader = "passthrough"

var fragmentShaders = map[string]string{
	"passthrough": passthroughFragmentShader,
	"crt":         crtFragmentShader,
}

// Shaders returns the names of the available fragment shaders.
func Shaders() []string {
	return slices.Sorted(maps.Keys(fragmentShaders))
}

// Columns are position and texture coordinates.
// Rows are the quad vertices in clockwise order.
var vertices = []float32{
	// x, y, z, s, t
	1.0, 1.0, 0, 1, 0, // top right
	1.0, -1.0, 0, 1, 1, // bottom right
	-1.0, -1.0, 0, 0, 1, // bottom left
	-1.0, 1.0, 0, 0, 0, // top left
}

var indices = []uint32{
	0, 1, 3,
	1, 2, 3,
}

const vertexShader = `
#version 330 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aTexCoord;

out vec2 TexCoord;

void main() {
    gl_Position = vec4(aPos, 1.0);
    TexCoord = aTexCoord;
}
` + "\x00"

const passthroughFragmentShader = `
#version 330 core
out vec4 FragColor;
in vec2 TexCoord;

uniform sampler2D ourTexture;

void main() {
    FragColor = texture(ourTexture, TexCoord);
}
` + "\x00"

// Scanlines every other CGA row, with a light vignette.
const crtFragmentShader = `
#version 330 core
out vec4 FragColor;
in vec2 TexCoord;

uniform sampler2D ourTexture;

void main() {
    vec3 color = texture(ourTexture, TexCoord).rgb;
    float scanline = sin(TexCoord.y * 200.0 * 3.14159) * 0.08;
    float vignette = 0.3 + 0.7 * pow(16.0 * TexCoord.x * TexCoord.y * (1.0 - TexCoord.x) * (1.0 - TexCoord.y), 0.25);
    color = color * vignette - scanline;
    FragColor = vec4(color, 1.0);
}
` + "\x00"

func compileShader(source string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(source)
	gl.ShaderSource(sh, 1, csrc, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	if gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status); status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLength)

		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(sh, logLength, nil, &log[0])

		return 0, fmt.Errorf("shader compile error: %v", string(log))
	}

	return sh, nil
}

func linkProgram(vert, frag uint32) (uint32, error) {
	prg := gl.CreateProgram()
	gl.AttachShader(prg, vert)
	gl.AttachShader(prg, frag)
	gl.LinkProgram(prg)

	var status int32
	if gl.GetProgramiv(prg, gl.LINK_STATUS, &status); status == gl.FALSE {
		var logLength int32
		var glLog [256]byte
		gl.GetProgramInfoLog(prg, int32(len(glLog)), &logLength, &glLog[0])
		return 0, fmt.Errorf("shader program link error: %v", string(glLog[:logLength]))
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	return prg, nil
}

func buildProgram(name string) (uint32, error) {
	vert, err := compileShader(vertexShader, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader compilation: %s", err)
	}

	frag, err := compileShader(fragmentShaders[name], gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment shader %q compilation: %s", name, err)
	}

	prog, err := linkProgram(vert, frag)
	if err != nil {
		return 0, fmt.Errorf("shader program link: %s", err)
	}
	return prog, nil
}
