package models

import "strings"

const (
	DefaultBestTrait = "No dominant trait"
	DefaultAnalysis  = "No analysis available"
)

// AnalysisResult is the design analysis currently displayed.
//
// It is replaced wholesale on every fetch or selection.
type AnalysisResult struct {
	ColorPalette  []string `json:"color_palette"`
	ContrastRatio float64  `json:"contrast_ratio"`
	HarmonyScore  float64  `json:"harmony_score"`
	BestTrait     string   `json:"best_trait"`
	Analysis      string   `json:"analysis"`
	SourceURL     string   `json:"url,omitempty"`
	WebsiteName   string   `json:"website_name,omitempty"`
	LogoURL       string   `json:"logo_url,omitempty"`
}

// EmptyAnalysis is the value held before anything has been fetched.
func EmptyAnalysis() AnalysisResult {
	return AnalysisResult{ColorPalette: []string{}}
}

// IsEmpty reports whether nothing has been analysed yet.
func (a AnalysisResult) IsEmpty() bool {
	return len(a.ColorPalette) == 0 && a.BestTrait == "" && a.Analysis == "" && a.SourceURL == ""
}

// Clone returns a copy that shares no slice memory with a.
func (a AnalysisResult) Clone() AnalysisResult {
	c := a
	c.ColorPalette = append([]string{}, a.ColorPalette...)
	return c
}

// ScrapeResponse is the body of POST /api/scrape.
type ScrapeResponse struct {
	ColorPalette  []string `json:"color_palette"`
	ContrastRatio *float64 `json:"contrast_ratio"`
	HarmonyScore  *float64 `json:"harmony_score"`
	BestTrait     string   `json:"best_trait"`
	Analysis      string   `json:"analysis"`
	Error         string   `json:"error,omitempty"`
}

// Result converts the response, substituting defaults for absent fields.
func (r ScrapeResponse) Result(sourceURL string) AnalysisResult {
	return AnalysisResult{
		ColorPalette:  palette(r.ColorPalette),
		ContrastRatio: number(r.ContrastRatio),
		HarmonyScore:  number(r.HarmonyScore),
		BestTrait:     orDefault(r.BestTrait, DefaultBestTrait),
		Analysis:      orDefault(r.Analysis, DefaultAnalysis),
		SourceURL:     sourceURL,
	}
}

// SaveRequest is the body of POST /api/save.
type SaveRequest struct {
	URL           string   `json:"url"`
	ColorPalette  []string `json:"color_palette"`
	ContrastRatio float64  `json:"contrast_ratio"`
	HarmonyScore  float64  `json:"harmony_score"`
	BestTrait     string   `json:"best_trait"`
	Analysis      string   `json:"analysis"`
}

// NewSaveRequest copies the fields of a that the save endpoint accepts.
func NewSaveRequest(a AnalysisResult) SaveRequest {
	return SaveRequest{
		URL:           a.SourceURL,
		ColorPalette:  palette(a.ColorPalette),
		ContrastRatio: a.ContrastRatio,
		HarmonyScore:  a.HarmonyScore,
		BestTrait:     a.BestTrait,
		Analysis:      a.Analysis,
	}
}

// PreviewSummary is one entry of GET /api/saved-sites-preview.
type PreviewSummary struct {
	ID          ID     `json:"_id"`
	WebsiteName string `json:"website_name"`
	LogoURL     string `json:"logo_url,omitempty"`
}

// Label returns the website name or a placeholder.
func (p PreviewSummary) Label() string {
	if strings.TrimSpace(p.WebsiteName) == "" {
		return "Untitled site"
	}
	return p.WebsiteName
}

// SiteFonts groups the fonts recorded for a saved site.
type SiteFonts struct {
	HeadingFonts    []string `json:"heading_fonts,omitempty"`
	SubheadingFonts []string `json:"subheading_fonts,omitempty"`
	ParagraphFonts  []string `json:"paragraph_fonts,omitempty"`
}

// SiteData is the nested "data" block stored with a saved site.
type SiteData struct {
	Fonts         SiteFonts `json:"fonts"`
	Colors        []string  `json:"colors,omitempty"`
	Technologies  []string  `json:"technologies,omitempty"`
	Analysis      string    `json:"analysis,omitempty"`
	ScreenshotURL string    `json:"screenshot_url,omitempty"`
}

// SiteDetails is the full record returned by GET /api/site-details/:id.
type SiteDetails struct {
	ID            ID        `json:"_id"`
	UserID        ID        `json:"user_id"`
	URL           string    `json:"url"`
	WebsiteName   string    `json:"website_name,omitempty"`
	LogoURL       string    `json:"logo_url,omitempty"`
	ColorPalette  []string  `json:"color_palette"`
	ContrastRatio *float64  `json:"contrast_ratio"`
	HarmonyScore  *float64  `json:"harmony_score"`
	BestTrait     string    `json:"best_trait"`
	Analysis      string    `json:"analysis"`
	Data          *SiteData `json:"data,omitempty"`
	CreatedAt     string    `json:"created_at,omitempty"`
}

// Result converts the saved record to the displayed analysis.
//
// The top-level analysis wins over data.analysis; both fall back to [DefaultAnalysis].
func (d SiteDetails) Result() AnalysisResult {
	analysis := d.Analysis
	if strings.TrimSpace(analysis) == "" && d.Data != nil {
		analysis = d.Data.Analysis
	}

	return AnalysisResult{
		ColorPalette:  palette(d.ColorPalette),
		ContrastRatio: number(d.ContrastRatio),
		HarmonyScore:  number(d.HarmonyScore),
		BestTrait:     orDefault(d.BestTrait, DefaultBestTrait),
		Analysis:      orDefault(analysis, DefaultAnalysis),
		SourceURL:     d.URL,
		WebsiteName:   d.WebsiteName,
		LogoURL:       d.LogoURL,
	}
}

// Clone returns a deep copy of d.
func (d SiteDetails) Clone() SiteDetails {
	c := d
	c.ColorPalette = append([]string(nil), d.ColorPalette...)
	if d.Data != nil {
		data := *d.Data
		data.Colors = append([]string(nil), d.Data.Colors...)
		data.Technologies = append([]string(nil), d.Data.Technologies...)
		c.Data = &data
	}
	return c
}

func palette(colors []string) []string {
	if colors == nil {
		return []string{}
	}
	return append([]string{}, colors...)
}

func number(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
