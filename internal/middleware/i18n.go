package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}
type countryContextKey struct{}

var (
	LocaleKey  = localeContextKey{}
	CountryKey = countryContextKey{}
)

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// Locales negotiates a response locale against a fixed set of supported tags.
type Locales struct {
	supported []string
	matcher   language.Matcher
	fallback  string
}

// NewLocales builds a Locales for the given supported tags. The fallback is
// used when nothing in the request matches; an empty fallback means the
// first supported tag.
func NewLocales(fallback string, supported ...string) *Locales {
	if len(supported) == 0 {
		supported = []string{"en"}
	}
	tags := make([]language.Tag, 0, len(supported))
	names := make([]string, 0, len(supported))
	for _, s := range supported {
		tag, err := language.Parse(s)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		names = append(names, strings.ToLower(s))
	}
	if fallback == "" && len(names) > 0 {
		fallback = names[0]
	}
	return &Locales{supported: names, matcher: language.NewMatcher(tags), fallback: fallback}
}

// I18N stores the negotiated locale and the best-effort client country in
// the request context.
func I18N(locales *Locales, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := ResolveCountry(r, lookup)
			locale := locales.detect(r, country)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			if country != "" {
				ctx = context.WithValue(ctx, CountryKey, strings.ToUpper(country))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (l *Locales) detect(r *http.Request, country string) string {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		if locale, ok := l.match(v); ok {
			return locale
		}
	}
	if locale, ok := l.match(r.Header.Get("Accept-Language")); ok {
		return locale
	}
	if locale, ok := l.forCountry(country); ok {
		return locale
	}
	return l.fallback
}

func (l *Locales) match(accept string) (string, bool) {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, index, confidence := l.matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(l.supported) {
		return "", false
	}
	return l.supported[index], true
}

// forCountry picks the supported locale whose likely region is country.
func (l *Locales) forCountry(country string) (string, bool) {
	if country == "" {
		return "", false
	}
	region, err := language.ParseRegion(country)
	if err != nil {
		return "", false
	}
	for _, s := range l.supported {
		tag, err := language.Parse(s)
		if err != nil {
			continue
		}
		if r, _ := tag.Region(); r == region {
			return s, true
		}
	}
	return "", false
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok && v != "" {
		return v
	}
	return "en"
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}

// ResolveCountry resolves a best-effort ISO country code for the given request.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	headerHints := []string{"X-Country-Code", "X-IP-Country", "CF-IPCountry", "X-Appengine-Country"}
	for _, key := range headerHints {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	if region := localeRegion(r.Header.Get("X-Locale")); region != "" {
		return region
	}
	if region := localeRegion(r.Header.Get("Accept-Language")); region != "" {
		return region
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

// localeRegion returns the region explicitly named by the most preferred tag.
func localeRegion(accept string) string {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil {
		return ""
	}
	for _, tag := range tags {
		region, confidence := tag.Region()
		if confidence == language.Exact {
			return region.String()
		}
	}
	return ""
}
