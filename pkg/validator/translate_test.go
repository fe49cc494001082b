package validator_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochoko/admin/pkg/validator"
)

func mockTranslate(key string, values map[string]any) string {
	translations := map[string]string{
		"validation.required": "{{field}}は必須です",
		"validation.oneof":    "{{field}}の値「{{value}}」は選択できません",
		"validation.number":   "{{field}}は数値で入力してください",
	}
	tmpl, ok := translations[key]
	if !ok {
		return key
	}
	for k, v := range values {
		tmpl = strings.ReplaceAll(tmpl, "{{"+k+"}}", fmt.Sprint(v))
	}
	return tmpl
}

func TestValidationErrors_Translate(t *testing.T) {
	t.Parallel()

	t.Run("translates messages in place", func(t *testing.T) {
		t.Parallel()
		errs := validator.ValidationErrors{
			{Field: "name", Message: "is required", TranslationKey: "validation.required"},
			{Field: "seimaibuai", Message: "must be a number", TranslationKey: "validation.number"},
		}

		errs.Translate(mockTranslate)

		assert.Equal(t, "nameは必須です", errs[0].Message)
		assert.Equal(t, "seimaibuaiは数値で入力してください", errs[1].Message)
	})

	t.Run("nil fn is no-op", func(t *testing.T) {
		t.Parallel()
		errs := validator.ValidationErrors{
			{Field: "name", Message: "is required", TranslationKey: "validation.required"},
		}

		errs.Translate(nil)

		assert.Equal(t, "is required", errs[0].Message)
	})

	t.Run("skips errors without a key", func(t *testing.T) {
		t.Parallel()
		errs := validator.ValidationErrors{
			{Field: "name", Message: "original message"},
			{Field: "brewery_name", Message: "is required", TranslationKey: "validation.required"},
		}

		errs.Translate(mockTranslate)

		assert.Equal(t, "original message", errs[0].Message)
		assert.Equal(t, "brewery_nameは必須です", errs[1].Message)
	})

	t.Run("keeps caller values", func(t *testing.T) {
		t.Parallel()
		values := map[string]any{"value": "premium"}
		errs := validator.ValidationErrors{
			{Field: "tokutei_meisho", Message: "bad", TranslationKey: "validation.oneof", TranslationValues: values},
		}

		errs.Translate(mockTranslate)

		assert.Equal(t, "tokutei_meishoの値「premium」は選択できません", errs[0].Message)
		assert.Equal(t, map[string]any{"value": "premium"}, errs[0].TranslationValues)
	})

	t.Run("end to end with Apply", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("name", " "),
			validator.OneOf("hiire_type", "boiled", []string{"hiire", "nama"}),
		)
		require.Error(t, err)

		ve := validator.ExtractValidationErrors(err)
		require.Len(t, ve, 2)
		ve.Translate(mockTranslate)

		assert.Equal(t, "nameは必須です", ve.First("name"))
		assert.Equal(t, "hiire_typeの値「boiled」は選択できません", ve.First("hiire_type"))
	})
}
