package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("invalid_type", nil); msg == "invalid_type" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("invalid_type", nil); msg == "invalid type" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_ExpectedSuffixAndUnknownCode(t *testing.T) {
	assert.Equal(t, "invalid type (number)", T("invalid_type", map[string]string{"expected": "number"}))
	assert.Equal(t, "no_such_code", T("no_such_code", nil))
}

type upperTranslator struct{}

func (upperTranslator) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator_CustomAndReset(t *testing.T) {
	SetTranslator(upperTranslator{})
	assert.Equal(t, "X:read_only", T("read_only", nil))

	SetTranslator(nil)
	assert.Equal(t, "read only", T("read_only", nil))
}
