// Package mask2svg 把二值掩码描摹成 SVG 轮廓
package mask2svg

import (
	"bytes"
	"fmt"
	"image"
	"strconv"
	"strings"
	"sync"

	"github.com/gotranspile/gotrace"
	"github.com/rustyoz/svg"
)

// Outline 一个掩码的矢量轮廓。
// Source 是第一个使用同一掩码的帧，Source == FrameIndex 表示该轮廓是独立描摹的
type Outline struct {
	FrameIndex int
	Source     int
	SVG        string
	Paths      []string
	Width      float64
	Height     float64
}

// Distinct 是否为独立描摹的轮廓
func (o Outline) Distinct() bool {
	return o.Source == o.FrameIndex
}

// TraceAll 并行描摹所有掩码；共享同一缓冲区的掩码只描摹一次，
// 其余帧复用 Source 的结果
func TraceAll(masks []*image.Gray) ([]Outline, error) {
	source := make([]int, len(masks))
	first := make(map[*image.Gray]int, len(masks))
	var distinct []int
	for i, m := range masks {
		j, seen := first[m]
		if !seen {
			j = i
			first[m] = i
			distinct = append(distinct, i)
		}
		source[i] = j
	}

	traced := make([]Outline, len(masks))
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for _, idx := range distinct {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := TraceMask(idx, masks[idx])
			if err != nil {
				once.Do(func() { firstErr = err })
				return
			}
			traced[idx] = o
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	for i, j := range source {
		if i != j {
			traced[i] = traced[j]
			traced[i].FrameIndex = i
		}
		traced[i].Source = j
	}
	return traced, nil
}

// TraceMask 描摹掩码中不透明（255）的区域
func TraceMask(index int, mask *image.Gray) (Outline, error) {
	doc, err := trace(mask)
	if err != nil {
		return Outline{}, fmt.Errorf("trace mask %d: %w", index, err)
	}

	parsed, err := svg.ParseSvg(doc, "outline", 1.0)
	if err != nil {
		return Outline{}, fmt.Errorf("parse outline %d: %w", index, err)
	}

	sz := mask.Bounds().Size()
	w, h, ok := viewBoxSize(parsed.ViewBox)
	if !ok {
		w, h = float64(sz.X), float64(sz.Y)
	}
	return Outline{
		FrameIndex: index,
		Source:     index,
		SVG:        doc,
		Paths:      extractPaths(doc),
		Width:      w,
		Height:     h,
	}, nil
}

// invert gotrace 描摹深色像素，掩码里不透明是 255
func invert(mask *image.Gray) *image.Gray {
	out := image.NewGray(mask.Rect)
	for i, v := range mask.Pix {
		out.Pix[i] = ^v
	}
	return out
}

// trace 反相后交给 gotrace，输出与掩码同尺寸的 SVG 文档
func trace(mask *image.Gray) (string, error) {
	paths, err := gotrace.Trace(gotrace.BitmapFromGray(invert(mask), nil), nil)
	if err != nil {
		return "", err
	}

	var doc bytes.Buffer
	sz := mask.Bounds().Size()
	if err := gotrace.Render("svg", nil, &doc, paths, sz.X, sz.Y); err != nil {
		return "", err
	}
	return doc.String(), nil
}

// viewBoxSize 从 "minX minY width height" 读取宽高
func viewBoxSize(box string) (float64, float64, bool) {
	fields := strings.FieldsFunc(box, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) != 4 {
		return 0, 0, false
	}
	size := [2]float64{}
	for i, f := range fields[2:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, 0, false
		}
		size[i] = v
	}
	return size[0], size[1], true
}
