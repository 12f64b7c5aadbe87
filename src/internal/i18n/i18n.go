// Package i18n resolves user-facing messages for the negotiated language.
package i18n

import (
	"context"

	"golang.org/x/text/language"
)

// Translator looks up a message by key. It never fails: when no table has
// the key it returns fallback, and when fallback is empty it returns key.
type Translator interface {
	Translate(key, fallback string) string
}

type Catalog struct {
	tags     []language.Tag
	messages map[language.Tag]map[string]string
	matcher  language.Matcher
	def      language.Tag
}

// NewCatalog builds a catalog whose first supported language is def.
func NewCatalog(def language.Tag, messages map[language.Tag]map[string]string) *Catalog {
	tags := []language.Tag{def}
	for tag := range messages {
		if tag != def {
			tags = append(tags, tag)
		}
	}
	return &Catalog{
		tags:     tags,
		messages: messages,
		matcher:  language.NewMatcher(tags),
		def:      def,
	}
}

// Default returns a catalog with the built-in tables.
func Default(defaultLang string) *Catalog {
	def, err := language.Parse(defaultLang)
	if err != nil {
		def = language.English
	}
	base, _ := def.Base()
	def = language.Make(base.String())
	if _, ok := builtin[def]; !ok {
		def = language.English
	}
	return NewCatalog(def, builtin)
}

// For picks the best supported language for an Accept-Language header.
func (c *Catalog) For(acceptLanguage string) Translator {
	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return c.Lang(c.def)
	}
	_, idx, _ := c.matcher.Match(desired...)
	return c.Lang(c.tags[idx])
}

func (c *Catalog) Lang(tag language.Tag) Translator {
	return translator{catalog: c, tag: tag}
}

type translator struct {
	catalog *Catalog
	tag     language.Tag
}

func (t translator) Translate(key, fallback string) string {
	if msg, ok := t.catalog.messages[t.tag][key]; ok {
		return msg
	}
	if msg, ok := t.catalog.messages[t.catalog.def][key]; ok {
		return msg
	}
	if fallback != "" {
		return fallback
	}
	return key
}

type ctxKey struct{}

func WithTranslator(ctx context.Context, t Translator) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

var english = NewCatalog(language.English, builtin).Lang(language.English)

// FromContext returns the request translator, or the built-in English one
// when none is set.
func FromContext(ctx context.Context) Translator {
	if t, ok := ctx.Value(ctxKey{}).(Translator); ok && t != nil {
		return t
	}
	return english
}
