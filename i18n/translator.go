package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "field").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			msg = "型が不正です"
		case "not_nullable":
			msg = "null は許可されていません"
		case "illegal_key":
			msg = "キーの型が不正です"
		case "illegal_value":
			msg = "値の型が不正です"
		case "incompatible_instance":
			msg = "互換性のないインスタンスです"
		case "unknown_field":
			msg = "未定義のフィールドです"
		case "read_only":
			msg = "読み取り専用です"
		case "unsupported_input":
			msg = "入力形式に対応していません"
		case "out_of_range":
			msg = "インデックスが範囲外です"
		case "definition":
			msg = "型定義が不正です"
		case "reserved_field":
			msg = "予約されたフィールド名です"
		case "missing_subtypes":
			msg = "型引数が指定されていません"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			msg = "invalid type"
		case "not_nullable":
			msg = "null is not allowed"
		case "illegal_key":
			msg = "illegal key"
		case "illegal_value":
			msg = "illegal value"
		case "incompatible_instance":
			msg = "incompatible instance"
		case "unknown_field":
			msg = "unknown field"
		case "read_only":
			msg = "read only"
		case "unsupported_input":
			msg = "unsupported input"
		case "out_of_range":
			msg = "index out of range"
		case "definition":
			msg = "invalid type definition"
		case "reserved_field":
			msg = "reserved field name"
		case "missing_subtypes":
			msg = "missing sub-types"
		}
	}
	if msg == "" {
		return code
	}
	if exp := data["expected"]; exp != "" {
		msg += " (" + exp + ")"
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	lang = strings.ToLower(lang)
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
