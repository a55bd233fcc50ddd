package image2frames

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// VideoProbe 只关心视频流
type VideoProbe struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		NbFrames     string `json:"nb_frames"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
}

// ProbeFrameRate 读取视频的平均帧率
func ProbeFrameRate(videoPath string) (float64, error) {
	probeStr, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return 0, fmt.Errorf("ffprobe error: %w", err)
	}
	return parseFrameRate(probeStr)
}

func parseFrameRate(probeStr string) (float64, error) {
	var probe VideoProbe
	if err := json.Unmarshal([]byte(probeStr), &probe); err != nil {
		return 0, fmt.Errorf("json unmarshal error: %w", err)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		if stream.AvgFrameRate == "" || stream.AvgFrameRate == "0/0" {
			continue
		}
		parts := strings.Split(stream.AvgFrameRate, "/")
		num, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("bad avg_frame_rate %q: %w", stream.AvgFrameRate, err)
		}
		if len(parts) == 1 {
			return num, nil
		}
		den, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || den == 0 {
			return 0, fmt.Errorf("bad avg_frame_rate %q", stream.AvgFrameRate)
		}
		return num / den, nil
	}

	return 0, fmt.Errorf("no video stream found or cannot determine frame rate")
}
