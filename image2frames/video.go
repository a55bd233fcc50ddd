package image2frames

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	ptypes "partify/type"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ExtractVideoFrames 用 ffmpeg 按 fps 抽帧，最长边不超过 maxSide
func ExtractVideoFrames(ctx context.Context, videoPath string, fps, maxSide int) ([]ptypes.SourceFrame, error) {
	if fps <= 0 {
		fps = 1
	}

	var out bytes.Buffer
	cmd := ffmpeg.Input(videoPath).
		Output("pipe:1", ffmpeg.KwArgs{
			"format":  "image2pipe",
			"vcodec":  "png",
			"pix_fmt": "rgba",
			"r":       strconv.Itoa(fps),
			"vf":      scaleFilter(maxSide),
		}).
		WithOutput(&out).
		WithErrorOutput(os.Stderr)
	cmd.Context = ctx

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg extract %s: %w", videoPath, err)
	}

	frames, err := decodePNGStream(&out, 1000/fps)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, ptypes.ErrNoFrames
	}
	return frames, nil
}

// scaleFilter 只缩小不放大，保持宽高比
func scaleFilter(maxSide int) string {
	if maxSide <= 0 {
		return "null"
	}
	return fmt.Sprintf("scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease", maxSide, maxSide)
}

// decodePNGStream 依次解码 image2pipe 输出的连续 PNG
func decodePNGStream(r io.Reader, durationMs int) ([]ptypes.SourceFrame, error) {
	reader := bufio.NewReader(r)
	var frames []ptypes.SourceFrame

	for index := 0; ; index++ {
		if _, err := reader.Peek(1); errors.Is(err, io.EOF) {
			break
		}
		img, _, err := image.Decode(reader)
		if err != nil {
			return nil, fmt.Errorf("decode frame %d failed: %w", index, err)
		}
		frames = append(frames, ptypes.SourceFrame{Index: index, Image: img, DurationMs: durationMs})
	}

	return frames, nil
}
