package i18n

import "sync"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "tag").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "unsupported_type":
			return "サポートされていない型です"
		case "malformed_declaration":
			return "宣言が不正です"
		case "not_a_mapping":
			return "マッピングではありません"
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須フィールドが不足しています"
		case "extra_keys":
			return "未知のキーがあります"
		case "unknown_type_tag":
			return "未知の型タグです"
		case "duplicate_discriminator_key":
			return "判別キーが重複しています"
		case "invalid_scalar":
			return "値を変換できません"
		case "result_type_mismatch":
			return "変換結果の型が一致しません"
		}
	default: // "en"
		switch code {
		case "unsupported_type":
			return "unsupported type"
		case "malformed_declaration":
			return "malformed declaration"
		case "not_a_mapping":
			return "not a mapping"
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required field missing"
		case "extra_keys":
			return "extra keys present"
		case "unknown_type_tag":
			return "unknown type tag"
		case "duplicate_discriminator_key":
			return "duplicate discriminator key"
		case "invalid_scalar":
			return "invalid scalar value"
		case "result_type_mismatch":
			return "converted value does not match the expected result type"
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
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
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
