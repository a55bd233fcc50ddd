package image2frames

import (
	"image"
	"image/color"
	ptypes "partify/type"

	"github.com/disintegration/imaging"
)

// Options 归一化参数
type Options struct {
	// CanvasMax 正方形画布的最大边长
	CanvasMax int
	// MinFrames 帧集合的最小长度
	MinFrames int
	// AlphaThreshold alpha 大于该值才视为不透明
	AlphaThreshold int
}

// DefaultOptions 返回默认参数
func DefaultOptions() Options {
	return Options{
		CanvasMax:      128,
		MinFrames:      ptypes.DefaultCycle,
		AlphaThreshold: 128,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.CanvasMax <= 0 {
		o.CanvasMax = d.CanvasMax
	}
	if o.MinFrames <= 0 {
		o.MinFrames = d.MinFrames
	}
	if o.AlphaThreshold < 0 || o.AlphaThreshold > 255 {
		o.AlphaThreshold = d.AlphaThreshold
	}
	return o
}

// Normalize 将源帧转为正方形亮度帧与掩码，并整体复制直到达到最小长度
func Normalize(frames []ptypes.SourceFrame, opts Options) *ptypes.FrameSet {
	opts = opts.withDefaults()

	fs := &ptypes.FrameSet{
		Frames:    make([]*image.Gray, 0, len(frames)),
		Durations: make([]int, 0, len(frames)),
		Masks:     make([]ptypes.StencilMask, 0, len(frames)),
	}
	for _, f := range frames {
		square := SquareFrame(f.Image, opts.CanvasMax)
		fs.Masks = append(fs.Masks, StencilMask(square, opts.AlphaThreshold))
		fs.Frames = append(fs.Frames, Luminance(square))

		duration := f.DurationMs
		if duration < 0 {
			duration = ptypes.DefaultDurationMs
		}
		fs.Durations = append(fs.Durations, duration)
	}

	Replicate(fs, opts.MinFrames)
	return fs
}

// Replicate 把原始帧集合整体追加到末尾，直到长度不小于 minFrames。
// 复制出的帧与原帧共享同一个缓冲区，归一化之后不会再被修改
func Replicate(fs *ptypes.FrameSet, minFrames int) {
	base := fs.Len()
	if base == 0 {
		return
	}
	for fs.Len() < minFrames {
		fs.Frames = append(fs.Frames, fs.Frames[:base]...)
		fs.Durations = append(fs.Durations, fs.Durations[:base]...)
		fs.Masks = append(fs.Masks, fs.Masks[:base]...)
	}
}

// SquareFrame 居中补齐为正方形（透明底），超出 canvasMax 时用 Lanczos 缩放
func SquareFrame(img image.Image, canvasMax int) *image.NRGBA {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	side := max(width, height)

	var frame *image.NRGBA
	if width == height {
		frame = imaging.Clone(img)
	} else {
		frame = imaging.New(side, side, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
		frame = imaging.Paste(frame, img, image.Pt((side-width)/2, (side-height)/2))
	}

	if side > canvasMax {
		frame = imaging.Resize(frame, canvasMax, canvasMax, imaging.Lanczos)
	}
	return frame
}

// StencilMask alpha > threshold 为 255，否则为 0
func StencilMask(frame *image.NRGBA, threshold int) *image.Gray {
	b := frame.Bounds()
	mask := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := frame.Pix[y*frame.Stride : y*frame.Stride+b.Dx()*4]
		dst := mask.Pix[y*mask.Stride : y*mask.Stride+b.Dx()]
		for x := range dst {
			if int(src[x*4+3]) > threshold {
				dst[x] = 255
			}
		}
	}
	return mask
}

// Luminance 灰度化，不受 alpha 影响
func Luminance(frame *image.NRGBA) *image.Gray {
	g := imaging.Grayscale(frame)
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+b.Dx()*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return out
}
