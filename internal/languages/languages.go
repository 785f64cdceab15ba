// Package languages is the compiled-in catalog of translation targets.
package languages

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

type Language struct {
	Code       string `json:"code" yaml:"code"`
	Name       string `json:"name" yaml:"name"`
	NativeName string `json:"nativeName" yaml:"native_name"`
	Category   string `json:"category" yaml:"category"`
}

// Tag parses Code as a BCP 47 tag.
func (l Language) Tag() (language.Tag, error) {
	return language.Parse(l.Code)
}

var all = []Language{
	{Code: "zh", Name: "Chinese", NativeName: "中文", Category: "East Asian"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語", Category: "East Asian"},
	{Code: "ko", Name: "Korean", NativeName: "한국어", Category: "East Asian"},
	{Code: "mn", Name: "Mongolian", NativeName: "Монгол", Category: "East Asian"},

	{Code: "en", Name: "English", NativeName: "English", Category: "European"},
	{Code: "fr", Name: "French", NativeName: "Français", Category: "European"},
	{Code: "de", Name: "German", NativeName: "Deutsch", Category: "European"},
	{Code: "es", Name: "Spanish", NativeName: "Español", Category: "European"},
	{Code: "it", Name: "Italian", NativeName: "Italiano", Category: "European"},
	{Code: "pt", Name: "Portuguese", NativeName: "Português", Category: "European"},
	{Code: "ru", Name: "Russian", NativeName: "Русский", Category: "European"},
	{Code: "nl", Name: "Dutch", NativeName: "Nederlands", Category: "European"},
	{Code: "pl", Name: "Polish", NativeName: "Polski", Category: "European"},
	{Code: "uk", Name: "Ukrainian", NativeName: "Українська", Category: "European"},
	{Code: "el", Name: "Greek", NativeName: "Ελληνικά", Category: "European"},
	{Code: "cs", Name: "Czech", NativeName: "Čeština", Category: "European"},
	{Code: "hu", Name: "Hungarian", NativeName: "Magyar", Category: "European"},
	{Code: "ro", Name: "Romanian", NativeName: "Română", Category: "European"},
	{Code: "sv", Name: "Swedish", NativeName: "Svenska", Category: "European"},
	{Code: "da", Name: "Danish", NativeName: "Dansk", Category: "European"},
	{Code: "fi", Name: "Finnish", NativeName: "Suomi", Category: "European"},
	{Code: "no", Name: "Norwegian", NativeName: "Norsk", Category: "European"},

	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी", Category: "South Asian"},
	{Code: "bn", Name: "Bengali", NativeName: "বাংলা", Category: "South Asian"},
	{Code: "ur", Name: "Urdu", NativeName: "اردو", Category: "South Asian"},
	{Code: "ta", Name: "Tamil", NativeName: "தமிழ்", Category: "South Asian"},
	{Code: "te", Name: "Telugu", NativeName: "తెలుగు", Category: "South Asian"},
	{Code: "mr", Name: "Marathi", NativeName: "मराठी", Category: "South Asian"},
	{Code: "gu", Name: "Gujarati", NativeName: "ગુજરાતી", Category: "South Asian"},
	{Code: "kn", Name: "Kannada", NativeName: "ಕನ್ನಡ", Category: "South Asian"},
	{Code: "ml", Name: "Malayalam", NativeName: "മലയാളം", Category: "South Asian"},
	{Code: "pa", Name: "Punjabi", NativeName: "ਪੰਜਾਬੀ", Category: "South Asian"},

	{Code: "th", Name: "Thai", NativeName: "ไทย", Category: "Southeast Asian"},
	{Code: "vi", Name: "Vietnamese", NativeName: "Tiếng Việt", Category: "Southeast Asian"},
	{Code: "id", Name: "Indonesian", NativeName: "Bahasa Indonesia", Category: "Southeast Asian"},
	{Code: "ms", Name: "Malay", NativeName: "Bahasa Melayu", Category: "Southeast Asian"},
	{Code: "fil", Name: "Filipino", NativeName: "Filipino", Category: "Southeast Asian"},
	{Code: "my", Name: "Burmese", NativeName: "မြန်မာစာ", Category: "Southeast Asian"},
	{Code: "km", Name: "Khmer", NativeName: "ខ្មែរ", Category: "Southeast Asian"},
	{Code: "lo", Name: "Lao", NativeName: "ລາວ", Category: "Southeast Asian"},

	{Code: "ar", Name: "Arabic", NativeName: "العربية", Category: "Middle Eastern"},
	{Code: "fa", Name: "Persian", NativeName: "فارسی", Category: "Middle Eastern"},
	{Code: "tr", Name: "Turkish", NativeName: "Türkçe", Category: "Middle Eastern"},
	{Code: "he", Name: "Hebrew", NativeName: "עברית", Category: "Middle Eastern"},
	{Code: "ku", Name: "Kurdish", NativeName: "کوردی", Category: "Middle Eastern"},

	{Code: "sw", Name: "Swahili", NativeName: "Kiswahili", Category: "African"},
	{Code: "am", Name: "Amharic", NativeName: "አማርኛ", Category: "African"},
	{Code: "ha", Name: "Hausa", NativeName: "هَوُسَ", Category: "African"},
	{Code: "yo", Name: "Yoruba", NativeName: "Yorùbá", Category: "African"},
	{Code: "zu", Name: "Zulu", NativeName: "isiZulu", Category: "African"},

	{Code: "pt-BR", Name: "Brazilian Portuguese", NativeName: "Português do Brasil", Category: "Latin American"},
	{Code: "es-419", Name: "Latin American Spanish", NativeName: "Español de América Latina", Category: "Latin American"},
	{Code: "qu", Name: "Quechua", NativeName: "Runasimi", Category: "Latin American"},
	{Code: "ay", Name: "Aymara", NativeName: "Aymar aru", Category: "Latin American"},
	{Code: "gn", Name: "Guarani", NativeName: "Avañe'ẽ", Category: "Latin American"},
}

// All returns a copy of the catalog in its declared order.
func All() []Language {
	out := make([]Language, len(all))
	copy(out, all)
	return out
}

// Categories returns the distinct categories sorted ascending.
func Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range all {
		if !seen[l.Category] {
			seen[l.Category] = true
			out = append(out, l.Category)
		}
	}
	sort.Strings(out)
	return out
}

// ByCategory returns the entries of category in catalog order. An unknown
// category yields an empty slice.
func ByCategory(category string) []Language {
	out := []Language{}
	for _, l := range all {
		if l.Category == category {
			out = append(out, l)
		}
	}
	return out
}

// ByCode looks up an entry by its code. Matching is on the canonical BCP 47
// form, so "PT-br" finds "pt-BR".
func ByCode(code string) (Language, bool) {
	want := canonical(code)
	for _, l := range all {
		if canonical(l.Code) == want {
			return l, true
		}
	}
	return Language{}, false
}

// ByName looks up an entry by its English or native name, ignoring case.
func ByName(name string) (Language, bool) {
	name = strings.TrimSpace(name)
	for _, l := range all {
		if strings.EqualFold(l.Name, name) || strings.EqualFold(l.NativeName, name) {
			return l, true
		}
	}
	return Language{}, false
}

// Resolve accepts a code or a name and returns the matching entry.
func Resolve(s string) (Language, bool) {
	if l, ok := ByCode(s); ok {
		return l, true
	}
	return ByName(s)
}

// Group is one category with its languages.
type Group struct {
	Category  string     `json:"category" yaml:"category"`
	Languages []Language `json:"languages" yaml:"languages"`
}

// Grouped returns every category in sorted order with its entries.
func Grouped() []Group {
	cats := Categories()
	out := make([]Group, 0, len(cats))
	for _, c := range cats {
		out = append(out, Group{Category: c, Languages: ByCategory(c)})
	}
	return out
}

func canonical(code string) string {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(code))
	}
	return tag.String()
}
