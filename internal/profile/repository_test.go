package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListOrdemDeterministica(t *testing.T) {
	// páginas consecutivas não podem repetir nem pular linhas quando
	// vários perfis compartilham o mesmo full_name
	assert.True(t, strings.HasSuffix(listOrder, "id ASC"))
}
