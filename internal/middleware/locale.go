package middleware

import (
	"context"
	"net/http"

	"github.com/soaringjerry/mindscope/internal/utils"
)

type ctxKey int

const localeKey ctxKey = 1

const defaultLocale = "en"

// SupportedLocales are the languages assessments carry text for.
var SupportedLocales = []string{"en", "zh"}

// LocaleMiddleware resolves the locale from ?lang=, then Accept-Language, then English,
// and echoes it in Content-Language.
func LocaleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := utils.DetermineLocale(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), SupportedLocales, defaultLocale)
		w.Header().Set("Content-Language", locale)
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), locale)))
	})
}

func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey, locale)
}

// LocaleFromContext returns the resolved locale, or English outside LocaleMiddleware.
func LocaleFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(localeKey).(string); ok && s != "" {
		return s
	}
	return defaultLocale
}
