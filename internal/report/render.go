package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"ViralGen-admin/internal/models"
)

// WordMIMEType 匯出報告的 Content-Type
const WordMIMEType = "application/msword"

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates = template.Must(template.New("report").Funcs(template.FuncMap{
	"nl2br": nl2br,
	"add":   func(a, b float64) float64 { return a + b },
}).ParseFS(templatesFS, "templates/*.tmpl"))

func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br/>"))
}

// RenderHTML 輸出頁面用的結果片段
func RenderHTML(w io.Writer, result models.AnalysisResult) error {
	if err := templates.ExecuteTemplate(w, "result", BuildView(result)); err != nil {
		return fmt.Errorf("渲染分析結果失敗: %w", err)
	}
	return nil
}

type wordDocData struct {
	View        View
	GeneratedAt string
}

// RenderWordDoc 輸出含內嵌樣式、可由 Word 開啟的 HTML 文件
func RenderWordDoc(w io.Writer, result models.AnalysisResult, now time.Time) error {
	data := wordDocData{
		View:        BuildView(result),
		GeneratedAt: now.Format("2006-01-02 15:04:05"),
	}
	if err := templates.ExecuteTemplate(w, "report.doc.tmpl", data); err != nil {
		return fmt.Errorf("產生 Word 報告失敗: %w", err)
	}
	return nil
}

// ExportFileName 例如 viral_analysis_2025-06-01.doc
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("viral_analysis_%s.doc", now.Format("2006-01-02"))
}
