package sanitize

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"guidebolt/internal/domain/models"
	"guidebolt/internal/lib/logger/sl"
)

var (
	anchorRe   = regexp.MustCompile(`(?i)<a\s+([^>]*href=["'][^"']+["'][^>]*)>`)
	targetRe   = regexp.MustCompile(`(?i)\btarget=`)
	relRe      = regexp.MustCompile(`(?i)\brel=`)
	checkboxRe = regexp.MustCompile(`(?i)<input\s+[^>]*type=["']checkbox["'][^>]*/?>`)
	checkedRe  = regexp.MustCompile(`(?i)\bchecked\b`)
	disabledRe = regexp.MustCompile(`(?i)\bdisabled\b`)
	tagRe      = regexp.MustCompile(`<[^>]*>`)

	youtubeRe = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`)
	vimeoRe   = regexp.MustCompile(`vimeo\.com/(\d+)`)
)

// Sanitizer превращает авторский rich-text в безопасную для рендера разметку
type Sanitizer struct {
	log    *slog.Logger
	policy *bluemonday.Policy
	md     goldmark.Markdown
}

func New(log *slog.Logger) *Sanitizer {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(false)
	policy.AllowAttrs("target", "rel").OnElements("a")
	policy.AllowAttrs("style").Globally()
	policy.AllowAttrs("type", "checked", "disabled").OnElements("input")
	policy.AllowElements("input", "span", "label", "svg", "path")
	policy.AllowAttrs("class").Globally()
	policy.AllowAttrs("aria-hidden", "width", "height", "viewBox", "version", "xmlns").OnElements("svg")
	policy.AllowAttrs("d", "fill", "stroke", "stroke-width").OnElements("path")

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)

	return &Sanitizer{log: log, policy: policy, md: md}
}

// Placeholder возвращает подстановку для пустого содержимого блока
func Placeholder(t models.BlockType, column string) string {
	switch column {
	case "left":
		return "Left Column"
	case "right":
		return "Right Column"
	}
	switch t {
	case models.BlockHeading:
		return "Heading"
	default:
		return "Paragraph"
	}
}

// Clean выполняет полный конвейер: вырезает небезопасные теги и атрибуты,
// прошивает якоря target/rel и заменяет нативные чекбоксы темизированным
// виджетом. Пустой ввод заменяется плейсхолдером до очистки.
// Никогда не возвращает ошибку: битая разметка схлопывается до безопасной.
func (s *Sanitizer) Clean(content, placeholder string) string {
	if strings.TrimSpace(tagRe.ReplaceAllString(content, "")) == "" {
		content = placeholder
	}

	clean := s.policy.Sanitize(content)
	clean = enhanceAnchors(clean)
	clean = s.replaceCheckboxes(clean)
	return clean
}

// CleanBlock очищает содержимое блока с плейсхолдером его типа
func (s *Sanitizer) CleanBlock(t models.BlockType, content string) string {
	return s.Clean(content, Placeholder(t, ""))
}

// CleanColumn очищает содержимое колонки two-column блока
func (s *Sanitizer) CleanColumn(t models.BlockType, content, column string) string {
	return s.Clean(content, Placeholder(t, column))
}

// RenderMarkdown конвертирует markdown в HTML и прогоняет результат
// через тот же конвейер очистки
func (s *Sanitizer) RenderMarkdown(source, placeholder string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(source), &buf); err != nil {
		s.log.Warn("markdown conversion failed", sl.Err(err))
		return s.Clean("", placeholder)
	}
	return s.Clean(buf.String(), placeholder)
}

// enhanceAnchors добавляет якорям target="_blank" и rel="noopener noreferrer",
// не дублируя уже существующие атрибуты
func enhanceAnchors(html string) string {
	return anchorRe.ReplaceAllStringFunc(html, func(match string) string {
		attrs := anchorRe.FindStringSubmatch(match)[1]
		var b strings.Builder
		b.WriteString("<a ")
		b.WriteString(attrs)
		if !targetRe.MatchString(attrs) {
			b.WriteString(` target="_blank"`)
		}
		if !relRe.MatchString(attrs) {
			b.WriteString(` rel="noopener noreferrer"`)
		}
		b.WriteString(">")
		return b.String()
	})
}

// replaceCheckboxes заменяет нативные чекбоксы темизированным виджетом,
// сохраняя состояние checked/disabled
func (s *Sanitizer) replaceCheckboxes(html string) string {
	return checkboxRe.ReplaceAllStringFunc(html, func(match string) string {
		var attrs strings.Builder
		if checkedRe.MatchString(match) {
			attrs.WriteString(" checked")
		}
		if disabledRe.MatchString(match) {
			attrs.WriteString(" disabled")
		}
		return fmt.Sprintf(`<label class="checkbox"><input class="checkbox__trigger visuallyhidden" type="checkbox"%s><span class="checkbox__symbol"><svg aria-hidden="true" class="icon-checkbox" width="28px" height="28px" viewBox="0 0 28 28" version="1" xmlns="http://www.w3.org/2000/svg"><path d="M4 14l8 7L24 7" fill="none" stroke="currentColor" stroke-width="3"></path></svg></span></label>`, attrs.String())
	})
}

// ConvertToEmbedURL приводит ссылку YouTube/Vimeo/Google Maps/Spotify к
// embed-виду; незнакомые ссылки возвращаются как есть
func ConvertToEmbedURL(url string) string {
	if strings.Contains(url, "youtube.com/watch") || strings.Contains(url, "youtu.be/") {
		if m := youtubeRe.FindStringSubmatch(url); m != nil {
			return "https://www.youtube.com/embed/" + m[1]
		}
		return url
	}
	if strings.Contains(url, "vimeo.com/") {
		if m := vimeoRe.FindStringSubmatch(url); m != nil {
			return "https://player.vimeo.com/video/" + m[1]
		}
		return url
	}
	if strings.Contains(url, "google.com/maps") {
		return strings.Replace(url, "/maps/", "/maps/embed/", 1)
	}
	if strings.Contains(url, "open.spotify.com/track/") ||
		strings.Contains(url, "open.spotify.com/album/") ||
		strings.Contains(url, "open.spotify.com/playlist/") {
		return strings.Replace(url, "open.spotify.com", "open.spotify.com/embed", 1)
	}
	return url
}
