package main

import (
	"context"
	"flag"
	"os"

	"github.com/charmbracelet/log"
)

func main() {

	inputPath := flag.String("input", "", "输入图像路径（png/jpeg/gif/webp/bmp/tiff）")
	videoPath := flag.String("video", "", "输入视频路径，使用 ffmpeg 抽帧")
	savePath := flag.String("output", "output/party.gif", "输出 GIF 路径")
	configPath := flag.String("config", "", "YAML 配置文件路径")
	fps := flag.Int("fps", 0, "视频抽帧的每秒帧数，覆盖配置")
	tint := flag.String("tint", "", "着色模式 shadow|highlight，覆盖配置")
	outlinePath := flag.String("outline", "", "把每个不同掩码的轮廓导出为 SVG，文件名追加 _<帧号>")
	swatchPath := flag.String("swatch", "", "把色相序列导出为 SVG 色条")
	debug := flag.Bool("debug", false, "输出调试日志")

	help := flag.Bool("help", false, "显示帮助信息")
	flag.Parse()
	if *help {
		flag.Usage()
		return
	}
	if *inputPath == "" && *videoPath == "" {
		flag.Usage()
		return
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "partify"})
	if *debug {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := loadConfig(*configPath, *fps, *tint)
	if err != nil {
		logger.Fatal("Error loading config", "err", err)
	}

	j := job{
		cfg:         cfg,
		logger:      logger,
		outputPath:  *savePath,
		outlinePath: *outlinePath,
		swatchPath:  *swatchPath,
	}

	ctx := context.Background()

	if *videoPath != "" {
		err = j.fromVideo(ctx, *videoPath)
	} else {
		err = j.fromImage(*inputPath)
	}
	if err != nil {
		logger.Fatal("Error generating gif", "err", err)
	}
}
