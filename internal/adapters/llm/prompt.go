package llm

import (
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
	"google.golang.org/genai"
)

// continuePrompt is sent when a turn has no history at all; the API
// rejects empty contents.
const continuePrompt = "Continue o planejamento a partir do plano atual."

// toContents maps role-tagged prompt messages to genai contents, keeping
// their order.
func toContents(messages []domain.PromptMessage) []*genai.Content {
	if len(messages) == 0 {
		return []*genai.Content{genai.NewContentFromText(continuePrompt, genai.RoleUser)}
	}

	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		var role genai.Role
		switch m.Role {
		case domain.PromptRoleAssistant:
			role = genai.RoleModel
		case domain.PromptRoleUser:
			role = genai.RoleUser
		default:
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents
}
