package ptypes

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

// DefaultCycle 默认的色相循环长度，也是帧集合的最小长度
const DefaultCycle = 7

// DefaultDurationMs 源帧未声明时长时使用的显示时长
const DefaultDurationMs = 120

// UnknownDuration 源帧没有声明时长；0 是合法的时长，原样保留
const UnknownDuration = -1

// ErrNoFrames 视频中没有提取到任何帧
var ErrNoFrames = errors.New("no frames extracted")

// DecodeError 输入字节无法解码为图像
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// SourceFrame 表示解码后的一帧，尺寸为画布尺寸
type SourceFrame struct {
	Index      int
	Image      image.Image
	DurationMs int
}

// StencilMask 二值掩码：255=不透明，0=透明
type StencilMask = *image.Gray

// FrameSet 归一化后的帧、时长、掩码，三者按下标对齐
type FrameSet struct {
	Frames    []*image.Gray
	Durations []int
	Masks     []StencilMask
}

// Len 返回帧数
func (fs *FrameSet) Len() int {
	return len(fs.Frames)
}

// Loop 表示一次完整的色相扫描
type Loop struct {
	// Divisor 色相分数的分母
	Divisor int
	// Count 该循环实际输出的帧数
	Count int
}

// Decoder 把字节解码为源帧序列
type Decoder interface {
	Decode(data []byte) ([]SourceFrame, error)
}

// Encoder 把 RGBA 帧序列编码为无限循环的动画
type Encoder interface {
	Encode(w io.Writer, frames []*image.NRGBA, durationsMs []int) error
}

// Duotone 描述着色映射：亮度 0 映射到 Black，亮度 255 映射到 White
type Duotone struct {
	Black color.NRGBA
	White color.NRGBA
}
