package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldErrorsCheck(t *testing.T) {
	fe := FieldErrors{}
	fe.Check("email", "", Required(), Email())
	fe.Check("nome", "Carlos", Required())

	assert.False(t, fe.Empty())
	assert.Len(t, fe["email"], 2)
	assert.NotContains(t, fe, "nome")
}

func TestFieldErrorsCheckOptional(t *testing.T) {
	fe := FieldErrors{}

	fe.CheckOptional("uf", nil, MinLen(2))
	vazio := "  "
	fe.CheckOptional("uf", &vazio, MinLen(2))
	assert.True(t, fe.Empty())

	curto := "X"
	fe.CheckOptional("uf", &curto, MinLen(2))
	assert.False(t, fe.Empty())
}

func TestRules(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		value string
		ok    bool
	}{
		{"required vazio", Required(), "   ", false},
		{"required ok", Required(), "x", true},
		{"minlen curto", MinLen(4), "abc", false},
		{"minlen ok", MinLen(4), "abcd", true},
		{"maxlen longo", MaxLen(3), "abcd", false},
		{"oneof fora", OneOf("a", "b"), "c", false},
		{"oneof dentro", OneOf("a", "b"), "b", true},
		{"uuid invalido", UUIDFormat(), "nao-e-uuid", false},
		{"uuid valido", UUIDFormat(), "2b0d7b3d-cbcd-4e8f-a1b5-9a9d4a4f4a01", true},
		{"email invalido", Email(), "semarroba", false},
		{"email valido", Email(), "agente@pac.org.br", true},
		{"data invalida", ISODate(), "31/12/2026", false},
		{"data simples", ISODate(), "2026-12-31", true},
		{"data rfc3339", ISODate(), "2026-12-31T10:00:00Z", true},
		{"slug maiusculo", SlugFormat(), "Operacao-Norte", false},
		{"slug ok", SlugFormat(), "operacao-norte", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.rule(tt.value)
			if tt.ok {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestParseISODate(t *testing.T) {
	ts, err := ParseISODate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.March, ts.Month())

	_, err = ParseISODate("ontem")
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Operação Águia Norte", "operacao-aguia-norte"},
		{"  Treinamento   2026!  ", "treinamento-2026"},
		{"çãõ", "cao"},
		{"---", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}
