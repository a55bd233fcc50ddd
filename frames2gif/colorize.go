package frames2gif

import (
	"image"
	"image/color"
	ptypes "partify/type"
)

// ToneMode 决定色相放在双色调的哪一端
type ToneMode string

const (
	// ToneShadow 黑色保持黑色，白色映射为色相
	ToneShadow ToneMode = "shadow"
	// ToneHighlight 黑色映射为色相，白色保持白色
	ToneHighlight ToneMode = "highlight"
)

var (
	black = color.NRGBA{A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Tone 根据模式构造双色调；neutral 为 nil 时使用黑或白
func Tone(mode ToneMode, hue color.RGBA, neutral *color.NRGBA) ptypes.Duotone {
	c := color.NRGBA{R: hue.R, G: hue.G, B: hue.B, A: 255}
	if mode == ToneHighlight {
		d := ptypes.Duotone{Black: c, White: white}
		if neutral != nil {
			d.White = *neutral
		}
		return d
	}
	d := ptypes.Duotone{Black: black, White: c}
	if neutral != nil {
		d.Black = *neutral
	}
	return d
}

// Colorize 按亮度在 Black 与 White 之间线性插值，再用掩码替换 alpha。
// frame 与 mask 尺寸必须一致，且原点为 (0,0)
func Colorize(frame *image.Gray, tone ptypes.Duotone, mask *image.Gray) *image.NRGBA {
	var lut [256][3]uint8
	for i := range lut {
		lut[i][0] = lerp(tone.Black.R, tone.White.R, i)
		lut[i][1] = lerp(tone.Black.G, tone.White.G, i)
		lut[i][2] = lerp(tone.Black.B, tone.White.B, i)
	}

	b := frame.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := frame.Pix[y*frame.Stride:]
		alpha := mask.Pix[y*mask.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			rgb := lut[src[x]]
			dst[x*4] = rgb[0]
			dst[x*4+1] = rgb[1]
			dst[x*4+2] = rgb[2]
			dst[x*4+3] = alpha[x]
		}
	}
	return out
}

// lerp 向下取整
func lerp(from, to uint8, i int) uint8 {
	diff := int(to) - int(from)
	step := diff * i
	q := step / 255
	if step%255 != 0 && step < 0 {
		q--
	}
	return uint8(int(from) + q)
}
