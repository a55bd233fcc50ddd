// Package spectrum 把帧划分为若干色相循环，并为每一帧计算均匀分布的色相
package spectrum

import (
	"image/color"
	"iter"
	"math"
	ptypes "partify/type"
)

// Plan 计算每个循环的色相等分数 Divisor 和实际取用的帧数 Count。
// 帧数不超过 cycle 时只有一个循环，色相按 cycle 等分，只取前 frameCount 个；
// 否则循环数为 frameCount/cycle，余数每次减一、每个循环加一帧，直到余数小于循环数，
// 剩下的从第一个循环开始各加一帧。划分出的总帧数可能多于 frameCount，按顺序截断
func Plan(frameCount, cycle int) []ptypes.Loop {
	if frameCount <= 0 {
		return nil
	}
	if cycle <= 0 {
		cycle = ptypes.DefaultCycle
	}

	numLoops, remainder := 1, 0
	if frameCount > cycle {
		numLoops = frameCount / cycle
		remainder = frameCount % cycle
	}
	perLoop := cycle
	for remainder >= numLoops {
		perLoop++
		remainder--
	}

	loops := make([]ptypes.Loop, 0, numLoops)
	left := frameCount
	for i := 0; i < numLoops && left > 0; i++ {
		n := perLoop
		if i < remainder {
			n++
		}
		loops = append(loops, ptypes.Loop{Divisor: n, Count: min(n, left)})
		left -= min(n, left)
	}
	return loops
}

// HueToRGB 满饱和度、满明度的 HSV 转 RGB，各通道乘 255 后截断。
// 按六个扇区计算，与常见的 hsv_to_rgb 逐位一致
func HueToRGB(fraction float64) color.RGBA {
	// 显式转换，避免编译器把乘减融合成 FMA
	h6 := float64(fraction * 6)
	sector := math.Floor(h6)
	f := float64(h6 - sector)
	const v, p = 1.0, 0.0
	q := 1 - f
	t := 1 - (1 - f)

	var r, g, b float64
	switch int(sector) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.RGBA{R: channel(r), G: channel(g), B: channel(b), A: 255}
}

func channel(v float64) uint8 {
	x := math.Trunc(float64(v * 255))
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}

// Spectrum 单次、按顺序消费的色相序列
type Spectrum struct {
	loops []ptypes.Loop
	loop  int
	frame int
}

// New 生成长度恰好为 frameCount 的色相序列
func New(frameCount, cycle int) *Spectrum {
	return &Spectrum{loops: Plan(frameCount, cycle)}
}

// Schedule 使用默认循环长度
func Schedule(frameCount int) *Spectrum {
	return New(frameCount, ptypes.DefaultCycle)
}

// Loops 返回循环划分
func (s *Spectrum) Loops() []ptypes.Loop {
	return s.loops
}

// NextFraction 返回下一帧的色相分数，序列耗尽时 ok 为 false
func (s *Spectrum) NextFraction() (fraction float64, ok bool) {
	for s.loop < len(s.loops) {
		l := s.loops[s.loop]
		if s.frame < l.Count {
			fraction = float64(s.frame) / float64(l.Divisor)
			s.frame++
			return fraction, true
		}
		s.loop++
		s.frame = 0
	}
	return 0, false
}

// Next 返回下一帧的颜色
func (s *Spectrum) Next() (color.RGBA, bool) {
	f, ok := s.NextFraction()
	if !ok {
		return color.RGBA{}, false
	}
	return HueToRGB(f), true
}

// All 以迭代器方式消费剩余的颜色
func (s *Spectrum) All() iter.Seq[color.RGBA] {
	return func(yield func(color.RGBA) bool) {
		for {
			c, ok := s.Next()
			if !ok || !yield(c) {
				return
			}
		}
	}
}

// Colors 一次性生成全部颜色
func Colors(frameCount, cycle int) []color.RGBA {
	colors := make([]color.RGBA, 0, max(frameCount, 0))
	for c := range New(frameCount, cycle).All() {
		colors = append(colors, c)
	}
	return colors
}

// Fractions 一次性生成全部色相分数
func Fractions(frameCount, cycle int) []float64 {
	s := New(frameCount, cycle)
	fractions := make([]float64, 0, max(frameCount, 0))
	for {
		f, ok := s.NextFraction()
		if !ok {
			return fractions
		}
		fractions = append(fractions, f)
	}
}
