// Package partify 把静态或动态图像转为轮廓循环变色的 GIF 动图
package partify

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"partify/config"
	"partify/frames2gif"
	"partify/image2frames"
	"partify/spectrum"
	ptypes "partify/type"

	"github.com/charmbracelet/log"
)

// Pipeline 解码、归一化、排色、着色、编码。没有跨调用的状态，可并发使用
type Pipeline struct {
	Decoder   ptypes.Decoder
	Encoder   ptypes.Encoder
	Normalize image2frames.Options
	Cycle     int
	Tint      frames2gif.ToneMode
	Neutral   *color.NRGBA
	Logger    *log.Logger
}

// New 根据配置构造 Pipeline
func New(cfg *config.Config, logger *log.Logger) (*Pipeline, error) {
	q, err := frames2gif.NewQuantizer(frames2gif.QuantizerName(cfg.Quantizer))
	if err != nil {
		return nil, err
	}

	opts := image2frames.DefaultOptions()
	opts.CanvasMax = cfg.CanvasMax
	opts.MinFrames = cfg.CycleLength
	if cfg.AlphaThreshold != nil {
		opts.AlphaThreshold = *cfg.AlphaThreshold
	}

	return &Pipeline{
		Decoder:   image2frames.Codec{DefaultDurationMs: cfg.DefaultDurationMs},
		Encoder:   frames2gif.Encoder{Quantizer: q, Dither: cfg.Dither},
		Normalize: opts,
		Cycle:     cfg.CycleLength,
		Tint:      frames2gif.ToneMode(cfg.Tint),
		Neutral:   cfg.NeutralColor(),
		Logger:    logger,
	}, nil
}

// Default 使用默认配置
func Default() *Pipeline {
	p, err := New(config.Default(), nil)
	if err != nil {
		panic(err)
	}
	return p
}

// Partify 使用默认配置转换图像；没有帧时返回 nil, nil
func Partify(data []byte) ([]byte, error) {
	return Default().Run(data)
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.Default()
}

// Prepare 解码并归一化。解码失败返回 *ptypes.DecodeError
func (p *Pipeline) Prepare(data []byte) (*ptypes.FrameSet, error) {
	frames, err := p.Decoder.Decode(data)
	if err != nil {
		return nil, err
	}
	return p.Frames(frames), nil
}

// Frames 归一化已解码的源帧
func (p *Pipeline) Frames(frames []ptypes.SourceFrame) *ptypes.FrameSet {
	if len(frames) > 0 {
		b := frames[0].Image.Bounds()
		p.logger().Debug("decoded", "frames", len(frames), "width", b.Dx(), "height", b.Dy())
	}
	fs := image2frames.Normalize(frames, p.Normalize)
	p.logger().Debug("normalized", "frames", fs.Len(), "replicated", fs.Len()-len(frames))
	return fs
}

// Run 完整流程：字节输入，GIF 字节输出
func (p *Pipeline) Run(data []byte) ([]byte, error) {
	fs, err := p.Prepare(data)
	if err != nil {
		return nil, err
	}
	return p.Render(fs)
}

// Render 为帧集合排色、着色并编码；空集合返回 nil, nil
func (p *Pipeline) Render(fs *ptypes.FrameSet) ([]byte, error) {
	output := p.Colorize(fs)
	if len(output) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := p.Encoder.Encode(&buf, output, fs.Durations); err != nil {
		return nil, fmt.Errorf("encode gif: %w", err)
	}
	p.logger().Debug("encoded", "frames", len(output), "bytes", buf.Len())
	return buf.Bytes(), nil
}

// Colorize 每帧按顺序取一个色相
func (p *Pipeline) Colorize(fs *ptypes.FrameSet) []*image.NRGBA {
	hues := spectrum.New(fs.Len(), p.Cycle)
	p.logger().Debug("scheduled", "loops", len(hues.Loops()))

	output := make([]*image.NRGBA, 0, fs.Len())
	for i, frame := range fs.Frames {
		hue, ok := hues.Next()
		if !ok {
			break
		}
		output = append(output, frames2gif.Colorize(frame, frames2gif.Tone(p.Tint, hue, p.Neutral), fs.Masks[i]))
	}
	return output
}
