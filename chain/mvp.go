package chain

// identityMVP is the MVP value offscreen passes bind (spec §4.F: "MVP: ...
// or identity for offscreen passes"), a column-major 4x4 identity matrix
// matching the teacher's Mat4 layout (engine/math, before it was trimmed to
// the two constructions this package actually needs).
func identityMVP() [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// orthoMVP is the final pass's standard orthographic projection, mapping a
// w×h render target onto clip space. isFlipped (spec §6
// set_source_texture(tex, is_flipped)) swaps top/bottom so a
// bottom-left-origin source doesn't come out upside down.
func orthoMVP(w, h int, isFlipped bool) [16]float32 {
	top, bottom := float32(0), float32(h)
	if isFlipped {
		top, bottom = float32(h), 0
	}
	return newOrthographic(0, float32(w), bottom, top, -1, 1)
}

// newOrthographic builds a column-major orthographic projection matrix, the
// same construction as the teacher's engine/math.NewMat4Orthographic.
func newOrthographic(left, right, bottom, top, nearClip, farClip float32) [16]float32 {
	lr := 1.0 / (left - right)
	bt := 1.0 / (bottom - top)
	nf := 1.0 / (nearClip - farClip)

	m := identityMVP()
	m[0] = -2.0 * lr
	m[5] = -2.0 * bt
	m[10] = 2.0 * nf
	m[12] = (left + right) * lr
	m[13] = (top + bottom) * bt
	m[14] = (farClip + nearClip) * nf
	return m
}
