package i18n

import (
	"fmt"
	"net/url"
)

// ParseLang returns English only for "en"; Arabic is the default
func ParseLang(v string) Lang {
	if v == string(LangEN) {
		return LangEN
	}
	return LangAR
}

// Toggle returns the other supported language
func (l Lang) Toggle() Lang {
	if l == LangAR {
		return LangEN
	}
	return LangAR
}

// Dir returns the text direction for the language
func (l Lang) Dir() string {
	if l == LangAR {
		return "rtl"
	}
	return "ltr"
}

// T looks up key for lang and formats it with args. Unknown keys come back as-is.
func T(lang Lang, key string, args ...interface{}) string {
	catalogue, ok := messages[lang]
	if !ok {
		catalogue = messages[LangAR]
	}
	msg, ok := catalogue[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Translator binds T to one language, for templates
type Translator struct {
	Lang Lang
}

func (tr Translator) T(key string, args ...interface{}) string {
	return T(tr.Lang, key, args...)
}

// ToggleURL flips lang in query and keeps every other parameter, id included
func ToggleURL(path string, query url.Values, current Lang) string {
	params := url.Values{}
	for k, v := range query {
		params[k] = append([]string(nil), v...)
	}
	params.Set("lang", string(current.Toggle()))
	if params.Get("id") == "" {
		params.Del("id")
	}
	return path + "?" + params.Encode()
}
