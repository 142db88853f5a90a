package notification

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListByUserOrdemDeterministica(t *testing.T) {
	// criada_em tem granularidade de microssegundo; inserções em batch podem
	// colidir, então o id desempata a paginação
	assert.True(t, strings.HasSuffix(listOrder, "id DESC"))
}
