package reading

import (
	"context"
	"fmt"
	"strings"

	"github.com/simorakkaus/tarologist/internal/models"
)

// InterpretInput carries everything the interpretation needs: the client
// context strings plus the full drawn-card list.
type InterpretInput struct {
	ClientName       string
	ClientAge        string
	Question         string
	QuestionCategory string
	Cards            []models.DrawnCard
}

// Interpreter turns a completed draw into a single free-text interpretation.
// Implementations are expected to block until done or ctx is cancelled.
type Interpreter interface {
	Interpret(ctx context.Context, in InterpretInput) (string, error)
}

// BuildPrompt renders the reading as the structured Russian prompt sent to
// the generative backend: client, category, question, then one line per
// drawn card with position, name, orientation and orientation-specific
// meaning.
func BuildPrompt(in InterpretInput) string {
	var b strings.Builder
	b.WriteString("Ты опытный таролог. Проанализируй следующий расклад:\n\n")
	fmt.Fprintf(&b, "Клиент: %s, возраст: %s\n", in.ClientName, in.ClientAge)
	fmt.Fprintf(&b, "Категория вопроса: %s\n", in.QuestionCategory)
	fmt.Fprintf(&b, "Вопрос: %s\n\n", in.Question)
	b.WriteString("Расклад:\n")

	for _, card := range in.Cards {
		orientation := "прямая"
		if card.IsReversed {
			orientation = "перевернутая"
		}
		fmt.Fprintf(&b, "- %s: %s (%s) - %s\n", card.Position.Name, card.Card.NameRu, orientation, card.Meaning())
	}

	b.WriteString("\nПредоставь подробное, эмпатичное толкование на русском языке, которое поможет клиенту понять ситуацию и возможные пути развития.")
	return b.String()
}

// TemplateInterpreter is the canned fallback used when no generative backend
// is configured or the upstream call fails. The original three-card template
// is kept for the first three positions and extended with a per-position
// paragraph for larger spreads.
type TemplateInterpreter struct{}

func (TemplateInterpreter) Interpret(_ context.Context, in InterpretInput) (string, error) {
	if len(in.Cards) == 0 {
		return "", fmt.Errorf("no drawn cards to interpret")
	}

	var b strings.Builder
	b.WriteString("На основе выпавших карт, можно сказать следующее:\n")

	templates := []string{
		"\nВ прошлом прослеживается влияние карты %s, что указывает на %s.\n",
		"\nВ настоящей ситуации %s предполагает %s.\n",
		"\nВ будущем возможно развитие в направлении %[2]s, как указывает карта %[1]s.\n",
	}

	for i, card := range in.Cards {
		if i < len(templates) {
			fmt.Fprintf(&b, templates[i], card.Card.NameRu, card.Meaning())
			continue
		}
		fmt.Fprintf(&b, "\nВ позиции «%s» карта %s говорит о следующем: %s.\n", card.Position.Name, card.Card.NameRu, card.Meaning())
	}

	b.WriteString("\nОбщая рекомендация: обратите внимание на свои внутренние ощущения и доверьтесь интуиции при принятии решений.")
	return b.String(), nil
}
