// Package i18n localizes issue codes for the HTTP surface.
package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "path" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg := t.base(code)
	if p := data["path"]; p != "" && p != "/" {
		if t.lang == "ja" {
			return msg + "（" + p + "）"
		}
		return msg + " at " + p
	}
	return msg
}

func (t dictTranslator) base(code string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "parse_error":
			return "JSON の解析に失敗しました"
		case "unsupported_value":
			return "スキーマに変換できない値です"
		case "duplicate_key":
			return "キーが重複しています"
		case "truncated":
			return "入力サイズの上限を超えました"
		case "invalid_config":
			return "設定が不正です"
		case "invalid_schema":
			return "スキーマ定義が不正です"
		}
	default: // "en"
		switch code {
		case "parse_error":
			return "invalid JSON"
		case "unsupported_value":
			return "value cannot be converted to a schema"
		case "duplicate_key":
			return "duplicate key"
		case "truncated":
			return "input exceeds the size limit"
		case "invalid_config":
			return "invalid configuration"
		case "invalid_schema":
			return "invalid schema document"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}

// For returns the built-in Translator for lang without touching the global one.
func For(lang string) Translator {
	if lang != "ja" {
		lang = "en"
	}
	return dictTranslator{lang: lang}
}

// Negotiate picks a supported language from an Accept-Language header value.
// Quality weights are ignored; the first supported tag wins. It returns ""
// when nothing matches.
func Negotiate(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		primary, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(tag)), "-")
		switch primary {
		case "ja", "en":
			return primary
		}
	}
	return ""
}
