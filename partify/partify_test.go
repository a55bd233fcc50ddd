package partify

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"partify/config"
	ptypes "partify/type"
	"testing"
)

func solidPNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -2 && d <= 2
}

func TestPartifyWhiteStill(t *testing.T) {
	out, err := Partify(solidPNG(t, 64, 64, color.NRGBA{255, 255, 255, 255}))
	if err != nil {
		t.Fatalf("Partify: %v", err)
	}

	g, err := gif.DecodeAll(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(g.Image) != 7 {
		t.Fatalf("got %d frames, want 7", len(g.Image))
	}
	if g.LoopCount != 0 {
		t.Errorf("LoopCount = %d, want 0 (infinite)", g.LoopCount)
	}

	want := []color.RGBA{
		{255, 0, 0, 255}, {255, 218, 0, 255}, {72, 255, 0, 255}, {0, 255, 145, 255},
		{0, 145, 255, 255}, {72, 0, 255, 255}, {255, 0, 218, 255},
	}
	for i, frame := range g.Image {
		if b := frame.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
			t.Errorf("frame %d bounds = %v", i, b)
		}
		if g.Delay[i] != 12 {
			t.Errorf("frame %d delay = %d, want 12", i, g.Delay[i])
		}
		if g.Disposal[i] != gif.DisposalBackground {
			t.Errorf("frame %d disposal = %d", i, g.Disposal[i])
		}
		r, gg, b, a := frame.At(32, 32).RGBA()
		if a>>8 != 255 {
			t.Errorf("frame %d should be opaque", i)
		}
		if !near(uint8(r>>8), want[i].R) || !near(uint8(gg>>8), want[i].G) || !near(uint8(b>>8), want[i].B) {
			t.Errorf("frame %d colour = (%d,%d,%d), want %v", i, r>>8, gg>>8, b>>8, want[i])
		}
	}
}

func TestPartifyAnimatedReplication(t *testing.T) {
	pal := color.Palette{color.Transparent, color.White}
	frames := make([]*image.Paletted, 3)
	for i := range frames {
		frames[i] = image.NewPaletted(image.Rect(0, 0, 20, 10), pal)
		for p := range frames[i].Pix {
			frames[i].Pix[p] = 1
		}
	}

	var src bytes.Buffer
	err := gif.EncodeAll(&src, &gif.GIF{Image: frames, Delay: []int{3, 4, 5}})
	if err != nil {
		t.Fatal(err)
	}

	out, err := Partify(src.Bytes())
	if err != nil {
		t.Fatalf("Partify: %v", err)
	}
	g, err := gif.DecodeAll(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(g.Image) != 9 {
		t.Fatalf("got %d frames, want 9", len(g.Image))
	}
	for i, d := range g.Delay {
		if want := 3 + i%3; d != want {
			t.Errorf("delay[%d] = %d, want %d", i, d, want)
		}
	}

	// 20x10 补齐为 20x20，内容位于第 5..14 行
	first := g.Image[0]
	if b := first.Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Fatalf("bounds = %v, want 20x20", b)
	}
	if _, _, _, a := first.At(0, 4).RGBA(); a != 0 {
		t.Errorf("padding should be transparent")
	}
	if _, _, _, a := first.At(0, 5).RGBA(); a>>8 != 255 {
		t.Errorf("content should be opaque")
	}
}

func TestPartifyDecodeError(t *testing.T) {
	out, err := Partify([]byte{0x00, 0x01, 0x02})
	var decodeErr *ptypes.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if out != nil {
		t.Errorf("expected no output on error")
	}
}

type fakeDecoder struct {
	frames []ptypes.SourceFrame
}

func (f fakeDecoder) Decode([]byte) ([]ptypes.SourceFrame, error) {
	return f.frames, nil
}

type recordingEncoder struct {
	frames    []*image.NRGBA
	durations []int
}

func (r *recordingEncoder) Encode(w io.Writer, frames []*image.NRGBA, durationsMs []int) error {
	r.frames = frames
	r.durations = durationsMs
	_, err := w.Write([]byte("GIF89a"))
	return err
}

func testPipeline(t *testing.T, frames []ptypes.SourceFrame, enc ptypes.Encoder) *Pipeline {
	t.Helper()
	p, err := New(config.Default(), nil)
	if err != nil {
		t.Fatal(err)
	}
	p.Decoder = fakeDecoder{frames: frames}
	p.Encoder = enc
	return p
}

func TestPipelineNoFrames(t *testing.T) {
	enc := &recordingEncoder{}
	out, err := testPipeline(t, nil, enc).Run([]byte("ignored"))
	if err != nil || out != nil {
		t.Fatalf("got %v, %v; want nil, nil", out, err)
	}
	if enc.frames != nil {
		t.Errorf("encoder should not be called")
	}
}

func TestPipelineColorizesInOrder(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 255, 255, 255, 200
	}
	var frames []ptypes.SourceFrame
	for i := 0; i < 15; i++ {
		frames = append(frames, ptypes.SourceFrame{Index: i, Image: img, DurationMs: 100})
	}

	enc := &recordingEncoder{}
	out, err := testPipeline(t, frames, enc).Run(nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if string(out) != "GIF89a" {
		t.Errorf("unexpected output %q", out)
	}
	if len(enc.frames) != 15 || len(enc.durations) != 15 {
		t.Fatalf("got %d frames, %d durations", len(enc.frames), len(enc.durations))
	}

	want := []color.RGBA{
		{255, 0, 0, 255}, {255, 191, 0, 255}, {127, 255, 0, 255}, {0, 255, 63, 255},
		{0, 255, 255, 255}, {0, 63, 255, 255}, {127, 0, 255, 255}, {255, 0, 191, 255},
		{255, 0, 0, 255}, {255, 218, 0, 255}, {72, 255, 0, 255}, {0, 255, 145, 255},
		{0, 145, 255, 255}, {72, 0, 255, 255}, {255, 0, 218, 255},
	}
	for i, f := range enc.frames {
		c := f.NRGBAAt(1, 1)
		if c.R != want[i].R || c.G != want[i].G || c.B != want[i].B || c.A != 255 {
			t.Errorf("frame %d = %v, want %v", i, c, want[i])
		}
	}
	// 15 帧分为 8 + 7 两个循环，第 9 帧重新从红色开始
	if c := enc.frames[8].NRGBAAt(0, 0); c.R != 255 || c.G != 0 || c.B != 0 {
		t.Errorf("second loop should restart at red, got %v", c)
	}
}

func TestPipelineHighlight(t *testing.T) {
	cfg := config.Default()
	cfg.Tint = "highlight"
	p, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	fs, err := p.Prepare(solidPNG(t, 8, 8, color.NRGBA{255, 255, 255, 255}))
	if err != nil {
		t.Fatal(err)
	}
	for i, f := range p.Colorize(fs) {
		if c := f.NRGBAAt(0, 0); c != (color.NRGBA{255, 255, 255, 255}) {
			t.Errorf("frame %d: white should stay white in highlight mode, got %v", i, c)
		}
	}
}

func TestPipelineSecondLoopStartsAfterLongerFirst(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(img.Pix); i++ {
		img.Pix[i] = 255
	}
	var frames []ptypes.SourceFrame
	for i := 0; i < 20; i++ {
		frames = append(frames, ptypes.SourceFrame{Index: i, Image: img, DurationMs: 50})
	}

	enc := &recordingEncoder{}
	if _, err := testPipeline(t, frames, enc).Run(nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(enc.frames) != 20 {
		t.Fatalf("got %d frames, want 20", len(enc.frames))
	}
	// 20 帧：第一个循环 13 帧，第 14 帧重新从红色开始
	if c := enc.frames[12].NRGBAAt(0, 0); c.R == 255 && c.G == 0 && c.B == 0 {
		t.Errorf("frame 12 should not be red yet")
	}
	if c := enc.frames[13].NRGBAAt(0, 0); c != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("frame 13 = %v, want red", c)
	}
}
