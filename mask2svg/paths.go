package mask2svg

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// extractPaths 按文档顺序收集任意嵌套层级下 <path> 的 d 属性；文档不完整时返回 nil
func extractPaths(data string) []string {
	dec := xml.NewDecoder(strings.NewReader(data))
	var paths []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return paths
		}
		if err != nil {
			return nil
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "path" {
			continue
		}
		for _, attr := range start.Attr {
			if attr.Name.Local == "d" {
				paths = append(paths, attr.Value)
			}
		}
	}
}
