package frames2gif

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/soniakeys/quant/median"
	"golang.org/x/image/draw"
)

// QuantizerName 配置中可选的量化器
type QuantizerName string

const (
	QuantizerMedian    QuantizerName = "median"
	QuantizerMedianCut QuantizerName = "mediancut"
)

// NewQuantizer 按名字构造量化器，未知名字返回错误
func NewQuantizer(name QuantizerName) (draw.Quantizer, error) {
	switch name {
	case "", QuantizerMedian:
		return median.Quantizer(255), nil
	case QuantizerMedianCut:
		return quantize.MedianCutQuantizer{}, nil
	default:
		return nil, fmt.Errorf("unknown quantizer %q", name)
	}
}

// Encoder 把 RGBA 帧编码为无限循环的 GIF，处置方式为恢复背景
type Encoder struct {
	Quantizer draw.Quantizer
	Dither    bool
}

// Encode 实现 ptypes.Encoder；时长单位毫秒，写入时换算为 1/100 秒
func (e Encoder) Encode(w io.Writer, frames []*image.NRGBA, durationsMs []int) error {
	if len(frames) == 0 {
		return errors.New("gif: no frames to encode")
	}
	if len(frames) != len(durationsMs) {
		return fmt.Errorf("gif: mismatched frame and duration lengths %d != %d", len(frames), len(durationsMs))
	}

	b := frames[0].Bounds()
	anim := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		Disposal:  make([]byte, len(frames)),
		LoopCount: 0,
		Config:    image.Config{Width: b.Dx(), Height: b.Dy()},
	}
	for i, frame := range frames {
		anim.Image[i] = e.paletted(frame)
		anim.Delay[i] = durationsMs[i] / 10
		anim.Disposal[i] = gif.DisposalBackground
	}

	return gif.EncodeAll(w, anim)
}

// paletted 调色板第 0 项固定为透明色，其余由量化器生成
func (e Encoder) paletted(frame *image.NRGBA) *image.Paletted {
	q := e.Quantizer
	if q == nil {
		q = median.Quantizer(255)
	}

	p := make(color.Palette, 0, 256)
	p = append(p, color.NRGBA{})
	p = q.Quantize(p, frame)

	pm := image.NewPaletted(frame.Bounds(), p)
	var drawer draw.Drawer = draw.Src
	if e.Dither {
		drawer = draw.FloydSteinberg
	}
	drawer.Draw(pm, pm.Bounds(), frame, frame.Bounds().Min)
	return pm
}
