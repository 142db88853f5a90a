package activity

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type inserter interface {
	Insert(ctx context.Context, entry Entry) error
}

// Recorder grava auditoria como efeito colateral best-effort: falha na
// gravação não reverte nem falha a mutação primária.
type Recorder struct {
	repo    inserter
	timeout time.Duration
}

// NewRecorder cria o gravador de auditoria.
func NewRecorder(repo inserter) *Recorder {
	return &Recorder{repo: repo, timeout: 5 * time.Second}
}

// Record insere a linha de auditoria. O contexto é desvinculado do ciclo de
// vida da resposta para que o término da requisição não cancele a escrita.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r == nil || r.repo == nil {
		return
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := r.repo.Insert(wctx, entry); err != nil {
		log.Error().Err(err).
			Str("action_type", entry.ActionType).
			Str("resource_type", entry.ResourceType).
			Msg("auditoria: falha ao gravar atividade")
	}
}
