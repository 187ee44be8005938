package enrich

// openai.go adapts the OpenAI chat completion API to the Restructurer
// interface. The prompt pins the fixed section template the front-end
// renders; the model fills it from the raw description.

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// restructurePrompt asks for the fixed section template, in the
// language the descriptions are written in.
const restructurePrompt = `Te rog să formatezi și să structurezi următoarea descriere imobiliară, ca și cum ai fi un agent imobiliar profesionist. Nu pune titlu, nu folosi bold, păstrează totul simplu de citit. Folosește exact aceste secțiuni:
Localizare:
  - Adresa:
  - Zona:
Caracteristici:
  - Suprafața terenului:
  - Construcții existente:
  - Posibilități:
  - Certificate de urbanism:
    - POT:
    - CUT:
    - Deschidere:
Accesibilitate și facilități:
  - Proximitate:
Descriere zonă:
  - Infrastructură și facilități:
Informații suplimentare:

%s`

// OpenAIRestructurer rewrites descriptions with a chat completion.
type OpenAIRestructurer struct {
	client *openai.Client
	model  string
}

// NewOpenAIRestructurer creates a restructurer using the given API key
// and model. An empty model falls back to GPT-4.
func NewOpenAIRestructurer(apiKey, model string) *OpenAIRestructurer {
	if model == "" {
		model = openai.GPT4
	}
	return &OpenAIRestructurer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Restructure implements Restructurer.
func (r *OpenAIRestructurer) Restructure(ctx context.Context, description string) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(restructurePrompt, description),
			},
		},
		MaxTokens:   500,
		Temperature: 0.9,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
