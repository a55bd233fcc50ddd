// Package swatch2svg 把色相序列画成 SVG 色条，循环之间留一格间隔
package swatch2svg

import (
	"errors"
	"image/color"
	"io"
	ptypes "partify/type"

	svg "github.com/ajstarks/svgo"
	"github.com/lucasb-eyer/go-colorful"
)

// Render 每帧一个 cell×cell 的方块
func Render(w io.Writer, loops []ptypes.Loop, colors []color.RGBA, cell int) error {
	total := 0
	for _, l := range loops {
		total += l.Count
	}
	if total != len(colors) {
		return errors.New("swatch: loop counts do not match colors")
	}
	if cell <= 0 {
		cell = 16
	}

	gap := cell / 2
	width := len(colors)*cell + max(len(loops)-1, 0)*gap
	canvas := svg.New(w)
	canvas.Start(max(width, 1), cell)

	x, i := 0, 0
	for _, l := range loops {
		for k := 0; k < l.Count; k++ {
			c, _ := colorful.MakeColor(colors[i])
			canvas.Rect(x, 0, cell, cell, "fill:"+c.Hex())
			x += cell
			i++
		}
		x += gap
	}

	canvas.End()
	return nil
}
