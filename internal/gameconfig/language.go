package gameconfig

import (
	"strings"

	"golang.org/x/text/language"
)

// Chinese spellings that are not valid BCP 47 tags but show up in configs.
var chineseAliases = map[string]bool{
	"cn":      true,
	"zn":      true,
	"chinese": true,
}

// NormalizeLanguage maps a configured language to one of the two UI
// languages, "zh" or "en".
func NormalizeLanguage(raw string) string {
	lang := strings.ToLower(strings.TrimSpace(raw))
	if chineseAliases[lang] {
		return "zh"
	}
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return "en"
	}
	if base, _ := tag.Base(); base == zhBase {
		return "zh"
	}
	return "en"
}

var zhBase, _ = language.Chinese.Base()
