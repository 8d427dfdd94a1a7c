package translate

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

func parseTag(lang string) (language.Tag, error) {
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("unsupported language %q: %w", lang, err)
	}
	return tag, nil
}

// SourceCode returns the DeepL source language code, which carries no
// regional variant.
func SourceCode(lang string) (string, error) {
	tag, err := parseTag(lang)
	if err != nil {
		return "", err
	}
	base, _ := tag.Base()
	return strings.ToUpper(base.String()), nil
}

// TargetCode maps a catalog locale such as "pt_BR" to a DeepL target code.
// English and Portuguese need a variant; Chinese needs a script.
func TargetCode(lang string) (string, error) {
	tag, err := parseTag(lang)
	if err != nil {
		return "", err
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	explicit := conf == language.Exact

	switch base.String() {
	case "en":
		if explicit && region.String() == "GB" {
			return "EN-GB", nil
		}
		return "EN-US", nil
	case "pt":
		if explicit && region.String() == "BR" {
			return "PT-BR", nil
		}
		return "PT-PT", nil
	case "zh":
		if script, _ := tag.Script(); script.String() == "Hant" {
			return "ZH-HANT", nil
		}
		return "ZH-HANS", nil
	default:
		return strings.ToUpper(base.String()), nil
	}
}
