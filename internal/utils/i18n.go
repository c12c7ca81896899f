package utils

// Server-side strings for the few messages the API writes itself.
// Assessment content carries its own translations.

var translations = map[string]map[string]string{
	"en": {
		"health.ok":          "ok",
		"error.internal":     "Internal server error.",
		"error.unauthorized": "Sign in to continue.",
		"error.forbidden":    "You do not have access to this resource.",
		"error.export_plan":  "Your membership plan does not include data export.",
		"error.bad_json":     "Request body must be valid JSON.",
	},
	"zh": {
		"health.ok":          "好的",
		"error.internal":     "服务器内部错误。",
		"error.unauthorized": "请先登录。",
		"error.forbidden":    "你无权访问该资源。",
		"error.export_plan":  "你的会员计划不包含数据导出功能。",
		"error.bad_json":     "请求体必须是有效的 JSON。",
	},
}

// T returns the translated string for key in locale; falls back to English, then the key.
func T(locale, key string) string {
	if v, ok := translations[locale][key]; ok {
		return v
	}
	if v, ok := translations["en"][key]; ok {
		return v
	}
	return key
}
