package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
)

// MockLLM returns a deterministic plan built from the last user message.
// Useful for local development without credentials.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Complete(_ context.Context, messages []domain.PromptMessage, systemPrompt string) (string, error) {
	last := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.PromptRoleUser {
			last = messages[i].Content
			break
		}
	}

	heading := "Plano da Semana da Computação"
	if strings.Contains(systemPrompt, "REVISÃO") {
		heading = "Revisão do plano"
	}

	return fmt.Sprintf("%s\n- Última contribuição: %q\n- Próximo passo: definir responsáveis e prazos.", heading, firstLine(last)), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
