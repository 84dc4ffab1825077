// scan.go
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FindLatestWorkbook 返回目录下修改时间最新的.xlsx路径，
// 没有匹配文件时返回os.ErrNotExist
func FindLatestWorkbook(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory: %w", err)
	}

	var (
		latest    string
		latestMod time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".xlsx") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = filepath.Join(dir, entry.Name())
			latestMod = info.ModTime()
		}
	}

	if latest == "" {
		return "", fmt.Errorf("no .xlsx files in %s: %w", dir, os.ErrNotExist)
	}
	return latest, nil
}
