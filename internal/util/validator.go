package util

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FieldErrors acumula mensagens de validação por campo.
type FieldErrors map[string][]string

// Add registra uma mensagem para o campo.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Empty indica ausência de erros.
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// Rule valida um valor e devolve mensagem de erro ("" quando válido).
type Rule func(value string) string

// Check aplica as regras ao valor e acumula falhas sob o nome do campo.
func (fe FieldErrors) Check(field, value string, rules ...Rule) {
	for _, rule := range rules {
		if msg := rule(value); msg != "" {
			fe.Add(field, msg)
		}
	}
}

// CheckOptional aplica regras somente quando o valor está presente e não vazio.
func (fe FieldErrors) CheckOptional(field string, value *string, rules ...Rule) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return
	}
	fe.Check(field, *value, rules...)
}

// Required exige valor não vazio.
func Required() Rule {
	return func(value string) string {
		if strings.TrimSpace(value) == "" {
			return "campo obrigatório"
		}
		return ""
	}
}

// MinLen exige comprimento mínimo.
func MinLen(n int) Rule {
	return func(value string) string {
		if len(strings.TrimSpace(value)) < n {
			return fmt.Sprintf("deve ter pelo menos %d caracteres", n)
		}
		return ""
	}
}

// MaxLen limita o comprimento.
func MaxLen(n int) Rule {
	return func(value string) string {
		if len(value) > n {
			return fmt.Sprintf("deve ter no máximo %d caracteres", n)
		}
		return ""
	}
}

// OneOf exige pertencimento ao conjunto informado.
func OneOf(allowed ...string) Rule {
	return func(value string) string {
		for _, item := range allowed {
			if value == item {
				return ""
			}
		}
		return "valor fora do conjunto permitido: " + strings.Join(allowed, ", ")
	}
}

// UUIDFormat exige UUID válido.
func UUIDFormat() Rule {
	return func(value string) string {
		if _, err := uuid.Parse(strings.TrimSpace(value)); err != nil {
			return "identificador inválido"
		}
		return ""
	}
}

// Email exige endereço de e-mail válido.
func Email() Rule {
	return func(value string) string {
		if _, err := mail.ParseAddress(strings.TrimSpace(value)); err != nil {
			return "email inválido"
		}
		return ""
	}
}

// ISODate exige data RFC 3339 ou AAAA-MM-DD.
func ISODate() Rule {
	return func(value string) string {
		if _, err := ParseISODate(value); err != nil {
			return "data inválida"
		}
		return ""
	}
}

// SlugFormat exige slug em minúsculas com hífens.
func SlugFormat() Rule {
	return func(value string) string {
		if value != Slugify(value) || value == "" {
			return "slug inválido"
		}
		return ""
	}
}

// ParseISODate aceita RFC 3339 completo ou data simples AAAA-MM-DD.
func ParseISODate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", value)
}
