package styles

import (
	"log/slog"

	"guidebolt/internal/domain/models"
)

// Resolver приводит карту стилей блока к безопасному для рендера виду
type Resolver struct {
	log *slog.Logger
}

func NewResolver(log *slog.Logger) *Resolver {
	return &Resolver{log: log}
}

// Defaults возвращает карту стилей по умолчанию для типа блока.
// "Reset to default" заменяет стили блока этой картой целиком.
func Defaults(t models.BlockType) models.StyleMap {
	switch t {
	case models.BlockHeading:
		return models.StyleMap{
			"fontSize":        24,
			"color":           "hsl(var(--foreground))",
			"textAlign":       "left",
			"backgroundColor": "transparent",
		}
	case models.BlockParagraph:
		return models.StyleMap{
			"fontSize":        16,
			"color":           "hsl(var(--foreground))",
			"textAlign":       "left",
			"backgroundColor": "transparent",
		}
	case models.BlockImage, models.BlockGif:
		return models.StyleMap{
			"borderRadius":    8,
			"padding":         0,
			"backgroundColor": "transparent",
			"width":           100,
			"height":          300,
		}
	case models.BlockVideo:
		return models.StyleMap{
			"borderRadius":    12,
			"padding":         0,
			"backgroundColor": "transparent",
			"width":           100,
			"height":          400,
		}
	case models.BlockEmbed:
		return models.StyleMap{
			"borderRadius":    8,
			"padding":         0,
			"backgroundColor": "transparent",
			"width":           100,
			"height":          400,
		}
	case models.BlockTwoColumn:
		return models.StyleMap{
			"backgroundColor": "transparent",
			"columnGap":       16,
			"leftColumnWidth": 50,
		}
	case models.BlockInputField:
		return models.StyleMap{
			"fontSize":        16,
			"backgroundColor": "transparent",
			"placeholder":     "Type your answer here...",
		}
	case models.BlockFileUpload:
		return models.StyleMap{
			"borderRadius":    8,
			"backgroundColor": "transparent",
		}
	default:
		return models.StyleMap{"backgroundColor": "transparent"}
	}
}

// DefaultContent возвращает содержимое нового блока данного типа
func DefaultContent(t models.BlockType) string {
	switch t {
	case models.BlockImage, models.BlockGif:
		return "/placeholder.png"
	case models.BlockVideo:
		return "https://example.com/video.mp4"
	case models.BlockEmbed:
		return "https://www.youtube.com/embed/dQw4w9WgXcQ"
	default:
		return ""
	}
}

// Coerce нормализует одно значение стиля: массив схлопывается до первого
// элемента, скаляры проходят как есть, остальное отбрасывается.
// Второй результат сообщает, пригодно ли значение.
func (r *Resolver) Coerce(key string, value any) (any, bool) {
	if arr, ok := value.([]any); ok {
		if len(arr) == 0 {
			r.log.Warn("empty array style value dropped", slog.String("key", key))
			return nil, false
		}
		r.log.Warn("array style value collapsed to first element",
			slog.String("key", key),
		)
		value = arr[0]
	}

	switch value.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return value, true
	default:
		r.log.Warn("non-scalar style value dropped",
			slog.String("key", key),
			slog.Any("value", value),
		)
		return nil, false
	}
}

// Resolve возвращает очищенную копию карты стилей блока, готовую к
// рендеру: отсутствующие ключи добираются из дефолтов типа.
func (r *Resolver) Resolve(t models.BlockType, m models.StyleMap) models.StyleMap {
	out := Defaults(t)
	for k, v := range m {
		safe, ok := r.Coerce(k, v)
		if !ok {
			delete(out, k)
			continue
		}
		out[k] = safe
	}
	return out
}
