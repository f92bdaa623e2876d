package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases and trims", "  Trade Name  ", "tradename"},
		{"strips symbols", "Unit Price (SAR) %", "unitpricesar"},
		{"unifies alif with hamza", "الإسم", "الاسم"},
		{"unifies alif with madda", "آسم", "اسم"},
		{"unifies ta marbuta", "الشركة", "الشركه"},
		{"unifies alif maksura", "مستشفى", "مستشفي"},
		{"empty", "", ""},
		{"symbols only", "%- ()", ""},
		{"mixed script", "سعر الجمهور SAR", "سعرالجمهورsar"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"الإسم التجاري",
		"Trade Name",
		"سعر الجمهور %",
		"Unit Price (SAR)",
		"",
		"نسبة الخصم %",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "input %q", input)
	}
}

func TestNormalize_HamzaVariantsCollide(t *testing.T) {
	// the two common spellings of "trade name" must land on the same key
	assert.Equal(t, Normalize("الاسم التجاري"), Normalize("الإسم التجاري"))
}
