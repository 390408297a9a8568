// package formatter exports design analyses to various formats (Markdown, CSV, plain text, JSON)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/swatch/internal/models"
	"github.com/desertthunder/swatch/internal/shared"
	"github.com/nao1215/markdown"
)

// Format is an export format name accepted by [Export].
type Format string

const (
	FormatMarkdown Format = "md"
	FormatCSV      Format = "csv"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatMarkdown, FormatCSV, FormatText, FormatJSON:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	case "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want md, csv, txt or json)", shared.ErrInvalidFlag, s)
	}
}

// Export renders an analysis in the given format.
func Export(format Format, result models.AnalysisResult) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return ExportToMarkdown(result, "")
	case FormatCSV:
		return ExportToCSV(result)
	case FormatText:
		return ExportToText(result)
	case FormatJSON:
		return ToJSON(result)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// Title returns the website name, falling back to the source URL.
func Title(result models.AnalysisResult) string {
	switch {
	case strings.TrimSpace(result.WebsiteName) != "":
		return result.WebsiteName
	case result.SourceURL != "":
		return result.SourceURL
	default:
		return "Design Analysis"
	}
}

// ExportToCSV writes one row per palette color with columns: Index, Color, Source, Best Trait, Harmony, Contrast
func ExportToCSV(result models.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Index", "Color", "Source", "Best Trait", "Harmony", "Contrast"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, color := range result.ColorPalette {
		record := []string{
			strconv.Itoa(i + 1),
			color,
			result.SourceURL,
			result.BestTrait,
			formatScore(result.HarmonyScore),
			formatScore(result.ContrastRatio),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a report with an optional logo image reference.
func ExportToMarkdown(result models.AnalysisResult, logoFilename string) ([]byte, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	md.H1(Title(result))
	md.PlainText("")

	if logoFilename != "" {
		md.PlainTextf("![Logo](%s)", logoFilename)
		md.PlainText("")
	}

	source := result.SourceURL
	if source == "" {
		source = "-"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", source},
			{"Best Trait", result.BestTrait},
			{"Harmony Score", formatScore(result.HarmonyScore)},
			{"Contrast Ratio", formatScore(result.ContrastRatio)},
		},
	})
	md.PlainText("")

	md.H2("Color Palette")
	md.PlainText("")
	if len(result.ColorPalette) == 0 {
		md.Note("No colors were extracted.")
	} else {
		rows := make([][]string, 0, len(result.ColorPalette))
		for i, color := range result.ColorPalette {
			rows = append(rows, []string{strconv.Itoa(i + 1), "`" + color + "`"})
		}
		md.Table(markdown.TableSet{Header: []string{"#", "Color"}, Rows: rows})
	}
	md.PlainText("")

	md.H2("Analysis")
	md.PlainText("")
	md.PlainText(result.Analysis)

	if err := md.Build(); err != nil {
		return nil, fmt.Errorf("failed to build Markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToText converts an analysis to plain text format
func ExportToText(result models.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Site: %s\n", Title(result))
	if result.SourceURL != "" {
		fmt.Fprintf(&buf, "URL: %s\n", result.SourceURL)
	}
	fmt.Fprintf(&buf, "Best Trait: %s\n", result.BestTrait)
	fmt.Fprintf(&buf, "Harmony Score: %s\n", formatScore(result.HarmonyScore))
	fmt.Fprintf(&buf, "Contrast Ratio: %s\n", formatScore(result.ContrastRatio))
	fmt.Fprintf(&buf, "Colors: %d\n\n", len(result.ColorPalette))

	for i, color := range result.ColorPalette {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, color)
	}
	if len(result.ColorPalette) > 0 {
		buf.WriteString("\n")
	}

	buf.WriteString(result.Analysis)
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// ToJSON renders the analysis as indented JSON.
func ToJSON(result models.AnalysisResult) ([]byte, error) {
	return shared.MarshalJSON(result, true)
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty URL provided", shared.ErrMissingArgument)
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Logo      string
	Warnings  []string
}

// WriteMarkdownExport writes an analysis to a dedicated directory.
//
// The logo is downloaded when result.LogoURL is set; a failed download is
// recorded as a warning and the report is written without it.
// Creates {dir}/README.md and optionally {dir}/logo{ext}.
func WriteMarkdownExport(ctx context.Context, result models.AnalysisResult, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = Slug(Title(result))
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	export := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var logoFilename string
	if result.LogoURL != "" {
		imageData, err := DownloadImage(ctx, result.LogoURL)
		if err != nil {
			export.Warnings = append(export.Warnings, fmt.Sprintf("failed to download logo: %v", err))
		} else {
			logoFilename = "logo" + imageExt(result.LogoURL)
			logoPath := filepath.Join(outputDir, logoFilename)
			if err := os.WriteFile(logoPath, imageData, 0644); err != nil {
				export.Warnings = append(export.Warnings, fmt.Sprintf("failed to save logo: %v", err))
				logoFilename = ""
			} else {
				export.Logo = logoPath
				export.Files = append(export.Files, logoPath)
			}
		}
	}

	mdData, err := ExportToMarkdown(result, logoFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	export.Files = append(export.Files, mdFile)

	return export, nil
}

// WriteExport writes a single-file export and returns its path.
//
// Defaults to {slug}.{format} in the current directory.
func WriteExport(format Format, result models.AnalysisResult, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s.%s", Slug(Title(result)), format)
	}

	data, err := Export(format, result)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

// Slug turns a title or URL into a filesystem-friendly name.
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, prefix := range []string{"https://", "http://", "www."} {
		s = strings.TrimPrefix(s, prefix)
	}

	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return "analysis"
	}
	return slug
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func imageExt(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	switch ext := strings.ToLower(filepath.Ext(url)); ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico":
		return ext
	default:
		return ".png"
	}
}
