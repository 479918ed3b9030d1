package pipeline

import (
	"fmt"
	"strings"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
)

const (
	noPlanPlaceholder       = "Nenhum plano definido ainda."
	noReviewPlanPlaceholder = "Ainda não há um plano claro."

	// EmptyIndexPlaceholder replaces retrieved context when nothing was indexed.
	EmptyIndexPlaceholder = "Nenhum PDF foi indexado ainda. Faça upload dos arquivos primeiro."
	// NoQuestionPlaceholder replaces retrieved context when there is no user message to search with.
	NoQuestionPlaceholder = "Nenhuma pergunta do usuário encontrada."
	// NoMatchesPlaceholder is used when the index returned no snippet.
	NoMatchesPlaceholder = "Nenhum trecho relevante foi encontrado nos PDFs."

	// ContextPrefix labels the extra message carrying document snippets.
	ContextPrefix = "Use também estes trechos dos PDFs como referência:\n\n"
)

const synthesisTemplate = `
Você é um assistente colaborativo ajudando um grupo a planejar a Semana da Computação.

- O campo 'board' é o plano colaborativo atual.
- A etapa atual (stage) é: %s.
- Use a conversa dos usuários e, se houver, o contexto dos PDFs para propor atualizações.

Objetivos:
- Comunicação: responder de forma clara às mensagens.
- Colaboração: ajudar a construir coletivamente o plano de atividades.
- Coordenação: sugerir próximos passos para o grupo (quem faz o quê, prazos, tarefas).

Plano atual (board):
%s
`

const reviewTemplate = `
Você está na fase de REVISÃO do plano colaborativo da Semana da Computação.

Plano atual:
%s

Tarefas:
- Apontar possíveis problemas ou pontos de melhoria.
- Sugerir ajustes finais concretos.
- Verificar se as responsabilidades e etapas estão bem coordenadas.

Responda em português, em tom construtivo.
`

// Prompt is the system prompt plus the ordered messages sent to the model.
type Prompt struct {
	System   string
	Messages []domain.PromptMessage
}

// BuildSynthesisPrompt embeds stage and board in the system prompt. A
// non-empty retrieved context is appended after the whole history.
func BuildSynthesisPrompt(state domain.SessionState, retrieved string) Prompt {
	board := state.Board
	if board == "" {
		board = noPlanPlaceholder
	}

	msgs := historyMessages(state.Messages)
	if retrieved != "" {
		msgs = append(msgs, domain.PromptMessage{
			Role:    domain.PromptRoleUser,
			Content: ContextPrefix + retrieved,
		})
	}

	return Prompt{
		System:   fmt.Sprintf(synthesisTemplate, state.Stage, board),
		Messages: msgs,
	}
}

// BuildReviewPrompt embeds the board and review instructions.
func BuildReviewPrompt(state domain.SessionState) Prompt {
	board := state.Board
	if board == "" {
		board = noReviewPlanPlaceholder
	}

	return Prompt{
		System:   fmt.Sprintf(reviewTemplate, board),
		Messages: historyMessages(state.Messages),
	}
}

// FormatSnippets renders search results the way the model receives them.
func FormatSnippets(snippets []string) string {
	if len(snippets) == 0 {
		return NoMatchesPlaceholder
	}

	parts := make([]string, 0, len(snippets))
	for i, s := range snippets {
		parts = append(parts, fmt.Sprintf("[Trecho %d]\n%s\n", i+1, s))
	}
	return strings.Join(parts, "\n\n")
}

func historyMessages(history []domain.Message) []domain.PromptMessage {
	out := make([]domain.PromptMessage, 0, len(history)+1)
	for _, m := range history {
		switch m.Kind {
		case domain.MessageUser:
			out = append(out, domain.PromptMessage{Role: domain.PromptRoleUser, Content: m.Content})
		case domain.MessageAssistant:
			out = append(out, domain.PromptMessage{Role: domain.PromptRoleAssistant, Content: m.Content})
		}
	}
	return out
}
