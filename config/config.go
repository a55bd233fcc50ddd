package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 彩虹动图的全部参数
type Config struct {
	CanvasMax         int         `yaml:"canvas_max"`          // 正方形画布最大边长（默认 128）
	CycleLength       int         `yaml:"cycle_length"`        // 色相循环长度与最小帧数（默认 7）
	DefaultDurationMs int         `yaml:"default_duration_ms"` // 未声明时长时的帧时长（默认 120）
	AlphaThreshold    *int        `yaml:"alpha_threshold"`     // alpha 严格大于该值视为不透明（默认 128）
	Tint              string      `yaml:"tint"`                // shadow | highlight
	Neutral           string      `yaml:"neutral"`             // 双色调非色相一端，如 "#000000"
	Quantizer         string      `yaml:"quantizer"`           // median | mediancut
	Dither            bool        `yaml:"dither"`
	Video             VideoConfig `yaml:"video"`
}

// VideoConfig 视频输入参数
type VideoConfig struct {
	FPS int `yaml:"fps"`
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	if err := Validate(cfg); err != nil {
		panic(err)
	}
	return cfg
}

// Load 读取并校验 YAML 配置
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse 解析并校验 YAML 配置
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate 校验配置并填充默认值
func Validate(cfg *Config) error {
	if cfg.CanvasMax < 0 {
		return fmt.Errorf("canvas_max must be > 0")
	}
	if cfg.CanvasMax == 0 {
		cfg.CanvasMax = 128
	}

	if cfg.CycleLength < 0 {
		return fmt.Errorf("cycle_length must be > 0")
	}
	if cfg.CycleLength == 0 {
		cfg.CycleLength = 7
	}

	if cfg.DefaultDurationMs < 0 {
		return fmt.Errorf("default_duration_ms must be > 0")
	}
	if cfg.DefaultDurationMs == 0 {
		cfg.DefaultDurationMs = 120
	}

	if cfg.AlphaThreshold == nil {
		threshold := 128
		cfg.AlphaThreshold = &threshold
	}
	if t := *cfg.AlphaThreshold; t < 0 || t > 254 {
		return fmt.Errorf("alpha_threshold must be within [0, 254]")
	}

	switch cfg.Tint {
	case "":
		cfg.Tint = "shadow"
	case "shadow", "highlight":
	default:
		return fmt.Errorf("tint must be shadow or highlight, got %q", cfg.Tint)
	}

	if cfg.Neutral != "" {
		if _, err := ParseHexColor(cfg.Neutral); err != nil {
			return fmt.Errorf("neutral: %w", err)
		}
	}

	switch cfg.Quantizer {
	case "":
		cfg.Quantizer = "median"
	case "median", "mediancut":
	default:
		return fmt.Errorf("quantizer must be median or mediancut, got %q", cfg.Quantizer)
	}

	if cfg.Video.FPS < 0 {
		return fmt.Errorf("video.fps must be > 0")
	}
	if cfg.Video.FPS == 0 {
		cfg.Video.FPS = 10
	}

	return nil
}

// NeutralColor 返回解析后的中性色，未配置时为 nil
func (c *Config) NeutralColor() *color.NRGBA {
	if c.Neutral == "" {
		return nil
	}
	n, err := ParseHexColor(c.Neutral)
	if err != nil {
		return nil
	}
	return &n
}

// ParseHexColor 解析 "#RRGGBB" 或 "RRGGBB"
func ParseHexColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("bad hex color %q", hex)
	}
	var rgb [3]uint8
	for i := range rgb {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("bad hex color %q: %w", hex, err)
		}
		rgb[i] = uint8(v)
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, nil
}
