package image2frames

import (
	"bytes"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	ptypes "partify/type"

	"github.com/kettek/apng"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Codec 默认的图像解码器
type Codec struct {
	DefaultDurationMs int
}

// Decode 实现 ptypes.Decoder
func (c Codec) Decode(data []byte) ([]ptypes.SourceFrame, error) {
	return Decode(data, c.DefaultDurationMs)
}

// Decode 将字节解码为源帧序列。GIF 与 APNG 按处置方式合成到画布上，其他格式视为单帧
func Decode(data []byte, defaultDurationMs int) ([]ptypes.SourceFrame, error) {
	if defaultDurationMs <= 0 {
		defaultDurationMs = ptypes.DefaultDurationMs
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &ptypes.DecodeError{Err: err}
	}

	switch format {
	case "gif":
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, &ptypes.DecodeError{Err: err}
		}
		return compositeGIF(g, defaultDurationMs), nil
	case "png":
		// 普通 PNG 只有一帧，走下面的单帧路径
		if a, err := apng.DecodeAll(bytes.NewReader(data)); err == nil && len(a.Frames) > 1 {
			return compositeAPNG(a, cfg.Width, cfg.Height), nil
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ptypes.DecodeError{Err: err}
	}
	return []ptypes.SourceFrame{{Index: 0, Image: img, DurationMs: defaultDurationMs}}, nil
}

// dispose 一帧显示之后对画布区域的处理
type dispose int

const (
	disposeNone dispose = iota
	disposeBackground
	disposePrevious
)

// compositor 维护动画画布，每次 add 都产出一张完整画布的快照
type compositor struct {
	canvas *image.RGBA
	prev   *image.RGBA
	frames []ptypes.SourceFrame
}

func newCompositor(width, height, capacity int) *compositor {
	r := image.Rect(0, 0, width, height)
	return &compositor{
		canvas: image.NewRGBA(r),
		prev:   image.NewRGBA(r),
		frames: make([]ptypes.SourceFrame, 0, capacity),
	}
}

// add 把 src 画到 dst 区域（画布坐标），记录快照后按 d 处理该区域
func (c *compositor) add(src image.Image, dst image.Rectangle, op draw.Op, d dispose, durationMs int) {
	if d == disposePrevious {
		copy(c.prev.Pix, c.canvas.Pix)
	}

	draw.Draw(c.canvas, dst, src, src.Bounds().Min, op)

	snapshot := image.NewRGBA(c.canvas.Bounds())
	copy(snapshot.Pix, c.canvas.Pix)
	c.frames = append(c.frames, ptypes.SourceFrame{
		Index:      len(c.frames),
		Image:      snapshot,
		DurationMs: durationMs,
	})

	switch d {
	case disposeBackground:
		draw.Draw(c.canvas, dst, image.Transparent, image.Point{}, draw.Src)
	case disposePrevious:
		copy(c.canvas.Pix, c.prev.Pix)
	}
}

// compositeGIF 逐帧合成，每个输出帧都是完整画布
func compositeGIF(g *gif.GIF, defaultDurationMs int) []ptypes.SourceFrame {
	if len(g.Image) == 0 {
		return nil
	}

	width, height := g.Config.Width, g.Config.Height
	if width <= 0 || height <= 0 {
		b := g.Image[0].Bounds()
		width, height = b.Max.X, b.Max.Y
	}

	c := newCompositor(width, height, len(g.Image))
	for i, frame := range g.Image {
		d := disposeNone
		if i < len(g.Disposal) {
			switch g.Disposal[i] {
			case gif.DisposalBackground:
				d = disposeBackground
			case gif.DisposalPrevious:
				d = disposePrevious
			}
		}
		c.add(frame, frame.Bounds(), draw.Over, d, frameDuration(g, i, defaultDurationMs))
	}
	return c.frames
}

// frameDuration GIF 的延时单位是 1/100 秒；延时 0 原样保留
func frameDuration(g *gif.GIF, idx, defaultDurationMs int) int {
	if idx < len(g.Delay) {
		return g.Delay[idx] * 10
	}
	return defaultDurationMs
}

// compositeAPNG 与 GIF 相同，偏移量与混合方式来自 fcTL
func compositeAPNG(a apng.APNG, width, height int) []ptypes.SourceFrame {
	if width <= 0 || height <= 0 {
		b := a.Frames[0].Image.Bounds()
		width, height = b.Dx(), b.Dy()
	}

	c := newCompositor(width, height, len(a.Frames))
	for _, f := range a.Frames {
		if f.Image == nil {
			continue
		}
		sz := f.Image.Bounds().Size()
		dst := image.Rect(f.XOffset, f.YOffset, f.XOffset+sz.X, f.YOffset+sz.Y)

		op := draw.Over
		if f.BlendOp == apng.BLEND_OP_SOURCE {
			op = draw.Src
		}
		d := disposeNone
		switch f.DisposeOp {
		case apng.DISPOSE_OP_BACKGROUND:
			d = disposeBackground
		case apng.DISPOSE_OP_PREVIOUS:
			d = disposePrevious
		}
		c.add(f.Image, dst, op, d, apngDuration(f.DelayNumerator, f.DelayDenominator))
	}
	return c.frames
}

// apngDuration 延时为 num/den 秒，den 为 0 时按 1/100 秒计
func apngDuration(num, den uint16) int {
	if den == 0 {
		den = 100
	}
	return int(num) * 1000 / int(den)
}
