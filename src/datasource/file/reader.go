// reader.go
package file

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
)

// ErrSheetNotFound 工作簿里不存在目标sheet
var ErrSheetNotFound = fmt.Errorf("sheet not found in workbook")

// Layout 描述报价工作簿的固定排版
type Layout struct {
	SheetName string            // 报价数据所在sheet
	HeaderRow int               // 标题行(1起算)
	FirstCol  int               // 数据起始列(1起算)
	Rename    map[string]string // 工作簿标题 → 规范列名
}

// ReadXLSXToDataFrame 从文件路径读取报价表
func ReadXLSXToDataFrame(filePath string, layout Layout) (dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open xlsx file: %w", err)
	}
	return sheetToDataFrame(xlFile, layout)
}

// ParseXLSX 从内存数据读取报价表(上传、邮件附件场景)
func ParseXLSX(data []byte, layout Layout) (dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenBinary(data)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse xlsx data: %w", err)
	}
	return sheetToDataFrame(xlFile, layout)
}

func sheetToDataFrame(xlFile *xlsx.File, layout Layout) (dataframe.DataFrame, error) {
	if len(xlFile.Sheets) == 0 {
		return dataframe.New(), fmt.Errorf("workbook has no sheets: %w", ErrSheetNotFound)
	}

	sheet, ok := xlFile.Sheet[layout.SheetName]
	if !ok || sheet == nil {
		return dataframe.New(), fmt.Errorf("sheet %q: %w", layout.SheetName, ErrSheetNotFound)
	}

	return convertSheetToDataFrame(sheet, layout), nil
}

// convertSheetToDataFrame 将xlsx.Sheet转换为dataframe.DataFrame。
// 标题取自layout.HeaderRow，数据从下一行开始，layout.FirstCol之前的
// 列跳过(原始工作簿前两列是空白装饰列)。
func convertSheetToDataFrame(sheet *xlsx.Sheet, layout Layout) dataframe.DataFrame {
	headerIdx := layout.HeaderRow - 1
	colOffset := layout.FirstCol - 1
	if headerIdx < 0 || headerIdx >= len(sheet.Rows) {
		return dataframe.New()
	}

	// 获取列名并应用重命名映射
	var headers []string
	headerRow := sheet.Rows[headerIdx]
	for i := colOffset; i < len(headerRow.Cells); i++ {
		name := strings.TrimSpace(headerRow.Cells[i].String())
		if name == "" {
			name = fmt.Sprintf("col_%d", i+1)
		}
		if canonical, ok := layout.Rename[name]; ok {
			name = canonical
		}
		headers = append(headers, name)
	}
	if len(headers) == 0 {
		return dataframe.New()
	}

	// 准备数据列
	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, 0, len(sheet.Rows)-headerIdx-1)
	}

	// 填充数据(标题行的下一行开始)
	for _, row := range sheet.Rows[headerIdx+1:] {
		for i := range headers {
			cellIdx := colOffset + i
			if cellIdx < len(row.Cells) {
				columns[i] = append(columns[i], row.Cells[cellIdx].String())
			} else {
				columns[i] = append(columns[i], "")
			}
		}
	}

	// 创建Series切片，统一按字符串载入，类型解析留给processor
	seriesList := make([]series.Series, len(headers))
	for i, colName := range headers {
		seriesList[i] = series.New(columns[i], series.String, colName)
	}

	return dataframe.New(seriesList...)
}

// EnsureDir 确保目录存在
func EnsureDir(dirPath string) error {
	if info, err := os.Stat(dirPath); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", dirPath)
	}
	return os.MkdirAll(dirPath, 0755)
}

// SetupSignalHandler 设置信号处理器
func SetupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		fmt.Printf("\nReceived signal: %v, shutting down...\n", sig)
		cancel()
	}()
}
