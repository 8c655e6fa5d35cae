// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glfw

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/gogpu/gg"
)

// viewport is the area of the framebuffer a page occupies.
type viewport struct {
	X, Y, W, H float64
}

// fit scales a page of pw x ph to fit inside a window of ww x wh,
// preserving its aspect ratio and centering it.
func fit(pw, ph, ww, wh int) viewport {
	if pw <= 0 || ph <= 0 || ww <= 0 || wh <= 0 {
		return viewport{W: float64(max(ww, 0)), H: float64(max(wh, 0))}
	}
	s := math.Min(float64(ww)/float64(pw), float64(wh)/float64(ph))
	w, h := float64(pw)*s, float64(ph)*s
	return viewport{X: (float64(ww) - w) / 2, Y: (float64(wh) - h) / 2, W: w, H: h}
}

// toPage maps a window point into the coordinates of a pw x ph page shown
// in v.
func (v viewport) toPage(x, y float64, pw, ph int) (float64, float64) {
	if v.W <= 0 || v.H <= 0 {
		return x, y
	}
	return (x - v.X) * float64(pw) / v.W, (y - v.Y) * float64(ph) / v.H
}

// renderer draws a premultiplied page image as a textured quad.
type renderer struct {
	program uint32
	vao     uint32
	vbo     uint32
	tex     uint32
	rect    int32
	texW    int
	texH    int
}

func newRenderer() (*renderer, error) {
	r := &renderer{}
	var err error
	r.program, err = makeProgram(vertexSource, fragmentSource)
	if err != nil {
		return nil, err
	}
	r.rect = gl.GetUniformLocation(r.program, gl.Str("uRect\x00"))

	// Unit quad as a triangle strip; the shader places it.
	verts := []float32{0, 0, 1, 0, 0, 1, 1, 1}
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, unsafe.Pointer(uintptr(0)))
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.GenTextures(1, &r.tex)
	gl.BindTexture(gl.TEXTURE_2D, r.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	return r, nil
}

// upload replaces the texture with img.
func (r *renderer) upload(img image.Image) {
	rgba := packed(img)
	w, h := rgba.Bounds().Dx(), rgba.Bounds().Dy()
	gl.BindTexture(gl.TEXTURE_2D, r.tex)
	if w != r.texW || h != r.texH {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
		r.texW, r.texH = w, h
	} else if w > 0 && h > 0 {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// packed returns img as an *image.RGBA with no row padding.
func packed(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*rgba.Bounds().Dx() && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// draw clears the fb x fh framebuffer to bg and draws the texture in v.
func (r *renderer) draw(fb, fh int, v viewport, bg gg.RGBA) {
	gl.Viewport(0, 0, int32(fb), int32(fh))
	gl.ClearColor(float32(bg.R*bg.A), float32(bg.G*bg.A), float32(bg.B*bg.A), float32(bg.A))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if r.texW == 0 || r.texH == 0 || fb <= 0 || fh <= 0 {
		return
	}
	// Framebuffer pixels to clip space, top-left origin.
	x0 := float32(v.X/float64(fb)*2 - 1)
	x1 := float32((v.X+v.W)/float64(fb)*2 - 1)
	y0 := float32(1 - v.Y/float64(fh)*2)
	y1 := float32(1 - (v.Y+v.H)/float64(fh)*2)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	gl.UseProgram(r.program)
	gl.Uniform4f(r.rect, x0, y0, x1, y1)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.tex)
	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
}

func (r *renderer) delete() {
	if r.tex != 0 {
		gl.DeleteTextures(1, &r.tex)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

const vertexSource = `
#version 330 core
layout(location=0) in vec2 aUV;
uniform vec4 uRect;
out vec2 vUV;
void main() {
    vUV = aUV;
    gl_Position = vec4(mix(uRect.xy, uRect.zw, aUV), 0.0, 1.0);
}
` + "\x00"

const fragmentSource = `
#version 330 core
in vec2 vUV;
uniform sampler2D uPage;
out vec4 FragColor;
void main() {
    FragColor = texture(uPage, vUV);
}
` + "\x00"

func makeShader(src string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	defer free()
	gl.ShaderSource(sh, 1, csrc, nil)
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen))
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(log))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("glfw: shader compile: %s", strings.TrimRight(log, "\x00"))
	}
	return sh, nil
}

func makeProgram(vsSrc, fsSrc string) (uint32, error) {
	vs, err := makeShader(vsSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := makeShader(fsSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}
	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("glfw: program link: %s", strings.TrimRight(log, "\x00"))
	}
	return prog, nil
}
