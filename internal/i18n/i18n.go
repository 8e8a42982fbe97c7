package i18n

import (
	"fmt"
	"strings"

	"github.com/upline-next/internal/constants"

	"github.com/gin-gonic/gin"
)

// 支持的语言
const (
	LocaleZH = constants.LocaleZhCN
	LocaleTW = constants.LocaleZhTW
	LocaleEN = constants.LocaleEnUS
)

const localeContextKey = "locale"

// ResolveLocale 解析请求语言。
// 优先级：查询参数 lang > 上下文缓存 > Accept-Language 头 > 默认中文。
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return LocaleZH
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		locale := normalizeLocale(lang)
		c.Set(localeContextKey, locale)
		return locale
	}
	if cached, ok := c.Get(localeContextKey); ok {
		if locale, ok := cached.(string); ok && locale != "" {
			return locale
		}
	}
	locale := normalizeLocale(c.GetHeader("Accept-Language"))
	c.Set(localeContextKey, locale)
	return locale
}

func normalizeLocale(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return LocaleZH
	}
	// Accept-Language 可能携带权重列表，取第一个语言标签
	if idx := strings.IndexAny(normalized, ",;"); idx >= 0 {
		normalized = normalized[:idx]
	}
	switch {
	case strings.HasPrefix(normalized, "zh-tw"), strings.HasPrefix(normalized, "zh-hant"), strings.HasPrefix(normalized, "zh-hk"):
		return LocaleTW
	case strings.HasPrefix(normalized, "zh"):
		return LocaleZH
	case strings.HasPrefix(normalized, "en"):
		return LocaleEN
	default:
		return LocaleZH
	}
}

// T 按语言取文案，找不到时回退中文，再回退 key 本身
func T(locale, key string) string {
	messages, ok := catalog[locale]
	if !ok {
		messages = catalog[LocaleZH]
	}
	if msg, ok := messages[key]; ok {
		return msg
	}
	if msg, ok := catalog[LocaleZH][key]; ok {
		return msg
	}
	return key
}

// Sprintf 按语言取带占位符的文案并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	template := T(locale, key)
	if len(args) == 0 {
		return template
	}
	return fmt.Sprintf(template, args...)
}
