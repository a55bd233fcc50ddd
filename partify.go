package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"partify/config"
	"partify/image2frames"
	"partify/mask2svg"
	"partify/partify"
	"partify/spectrum"
	"partify/swatch2svg"
	ptypes "partify/type"

	"github.com/charmbracelet/log"
)

type job struct {
	cfg         *config.Config
	logger      *log.Logger
	outputPath  string
	outlinePath string
	swatchPath  string
}

// loadConfig 读取配置文件（可选），命令行参数优先
func loadConfig(path string, fps int, tint string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if fps > 0 {
		cfg.Video.FPS = fps
	}
	if tint != "" {
		cfg.Tint = tint
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (j *job) fromImage(inputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	p, err := partify.New(j.cfg, j.logger)
	if err != nil {
		return err
	}

	j.logger.Info("Decoding image...", "path", inputPath)
	fs, err := p.Prepare(data)
	if err != nil {
		return err
	}
	return j.render(p, fs)
}

func (j *job) fromVideo(ctx context.Context, videoPath string) error {
	if rate, err := image2frames.ProbeFrameRate(videoPath); err == nil {
		j.logger.Info("Probed video", "fps", rate)
	} else {
		j.logger.Warn("Probe failed", "err", err)
	}

	j.logger.Info("Extracting frames from video...", "fps", j.cfg.Video.FPS)
	frames, err := image2frames.ExtractVideoFrames(ctx, videoPath, j.cfg.Video.FPS, j.cfg.CanvasMax)
	if err != nil {
		return fmt.Errorf("extract frames: %w", err)
	}
	j.logger.Info("Extracted frames", "count", len(frames))

	p, err := partify.New(j.cfg, j.logger)
	if err != nil {
		return err
	}
	return j.render(p, p.Frames(frames))
}

func (j *job) render(p *partify.Pipeline, fs *ptypes.FrameSet) error {
	j.logger.Info("Colorizing frames...", "frames", fs.Len())
	gifBytes, err := p.Render(fs)
	if err != nil {
		return err
	}
	if gifBytes == nil {
		j.logger.Warn("No frames decoded, nothing written")
		return nil
	}
	if err := writeFile(j.outputPath, gifBytes); err != nil {
		return err
	}
	j.logger.Info("Wrote gif", "path", j.outputPath, "bytes", len(gifBytes))

	if j.outlinePath != "" {
		if err := j.writeOutline(fs); err != nil {
			return err
		}
	}
	if j.swatchPath != "" {
		if err := j.writeSwatch(fs); err != nil {
			return err
		}
	}
	return nil
}

// writeOutline 每个不同的掩码导出一个 SVG：<outline>_<帧号>.svg
func (j *job) writeOutline(fs *ptypes.FrameSet) error {
	outlines, err := mask2svg.TraceAll(fs.Masks)
	if err != nil {
		return err
	}

	written := 0
	for _, o := range outlines {
		if !o.Distinct() {
			continue
		}
		path := outlineFile(j.outlinePath, o.FrameIndex)
		if err := writeFile(path, []byte(o.SVG)); err != nil {
			return err
		}
		j.logger.Debug("Wrote outline", "path", path, "paths", len(o.Paths))
		written++
	}
	j.logger.Info("Wrote outlines", "base", j.outlinePath, "files", written)
	return nil
}

func outlineFile(base string, id int) string {
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_" + strconv.Itoa(id) + ".svg"
}

func (j *job) writeSwatch(fs *ptypes.FrameSet) error {
	var buf bytes.Buffer
	loops := spectrum.Plan(fs.Len(), j.cfg.CycleLength)
	if err := swatch2svg.Render(&buf, loops, spectrum.Colors(fs.Len(), j.cfg.CycleLength), 16); err != nil {
		return err
	}
	j.logger.Info("Wrote swatch", "path", j.swatchPath, "loops", len(loops))
	return writeFile(j.swatchPath, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
