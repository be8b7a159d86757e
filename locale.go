package ctx

import "golang.org/x/text/language"

// locales wraps the preferred language tags of a request so that the
// slice gets its own type in the chain.
type locales []language.Tag

// WithLocale returns a copy of parent carrying the caller's preferred
// locales, most preferred first. Tags that do not parse are skipped.
//
// The locale used follows the specification defined at
// http://www.rfc-editor.org/rfc/bcp/bcp47.txt.
// Examples are: "en-US", "fr-CH", "es-MX"
func WithLocale(parent Context, tags ...string) Context {
	preferred := make(locales, 0, len(tags))
	for _, t := range tags {
		tag, err := language.Parse(t)
		if err != nil {
			continue
		}
		preferred = append(preferred, tag)
	}
	return WithValue(parent, preferred)
}

// LocaleFromContext returns a copy of the preferred locales attached
// to c, or nil when no locale information is present.
func LocaleFromContext(c Context) []language.Tag {
	l, ok := Value[locales](c)
	if !ok {
		return nil
	}
	tags := make([]language.Tag, len(l))
	copy(tags, l)
	return tags
}

// MatchLocale finds the best supported language based on the preferred
// locales attached to c and the languages for which the caller has
// translations. When c carries no locale, the first available tag is
// returned. Without available tags there is nothing to match and Und
// is returned.
func MatchLocale(c Context, available ...language.Tag) language.Tag {
	if len(available) == 0 {
		return language.Und
	}
	preferred := LocaleFromContext(c)
	_, i, _ := language.NewMatcher(available).Match(preferred...)
	return available[i]
}
