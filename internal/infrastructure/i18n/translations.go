package i18n

import (
	"embed"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"recruitbot/internal/ports/output"
	"recruitbot/pkg/logger"
)

//go:embed active.*.toml
var localeFS embed.FS

// Locale files shipped with the binary.
var localeFiles = []string{"active.ja.toml", "active.en.toml"}

var _ output.T = (*Translator)(nil)

// Translator is a thin wrapper around go-i18n's Bundle/Localizer.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	log             *logrus.Entry
}

// NewTranslator builds a Translator backed by go-i18n using the given default
// locale (e.g. "ja").
func NewTranslator(defaultLocale string) *Translator {
	log := logger.For("i18n")
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.Japanese
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			log.WithError(err).Errorf("failed to load %s", file)
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
		log:             log,
	}
}

// T renders the message identified by key for the given locale.
// If the key/locale is not found, it falls back to the default locale,
// then finally to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	localizer := i18n.NewLocalizer(t.bundle, languages...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		t.log.WithFields(logrus.Fields{"key": key, "locales": languages}).WithError(err).Warn("localize failed")
		return key
	}
	return msg
}
