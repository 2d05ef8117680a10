package reading

import (
	"context"
	"strings"
	"testing"

	"github.com/simorakkaus/tarologist/internal/models"
)

func drawnCard(nameRu, position, light, shadow string, reversed bool) models.DrawnCard {
	return models.DrawnCard{
		Card:       models.TarotCard{NameRu: nameRu, MeaningLight: light, MeaningShadow: shadow},
		Position:   models.SpreadPosition{Name: position},
		IsReversed: reversed,
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(InterpretInput{
		ClientName:       "Анна",
		ClientAge:        "34",
		Question:         "Что меня ждет?",
		QuestionCategory: "Любовь",
		Cards: []models.DrawnCard{
			drawnCard("Шут", "Прошлое", "новые начинания", "безрассудство", false),
			drawnCard("Маг", "Настоящее", "сила воли", "манипуляции", true),
		},
	})

	for _, want := range []string{
		"Ты опытный таролог. Проанализируй следующий расклад:",
		"Клиент: Анна, возраст: 34",
		"Категория вопроса: Любовь",
		"Вопрос: Что меня ждет?",
		"- Прошлое: Шут (прямая) - новые начинания",
		"- Настоящее: Маг (перевернутая) - манипуляции",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestDrawnCardMeaningFollowsOrientation(t *testing.T) {
	upright := drawnCard("Шут", "Прошлое", "свет", "тень", false)
	if upright.Meaning() != "свет" {
		t.Errorf("Expected upright meaning, got %s", upright.Meaning())
	}

	reversed := drawnCard("Шут", "Прошлое", "свет", "тень", true)
	if reversed.Meaning() != "тень" {
		t.Errorf("Expected reversed meaning, got %s", reversed.Meaning())
	}
}

func TestTemplateInterpreterThreeCards(t *testing.T) {
	text, err := TemplateInterpreter{}.Interpret(context.Background(), InterpretInput{
		Cards: []models.DrawnCard{
			drawnCard("Шут", "Прошлое", "начало", "", false),
			drawnCard("Маг", "Настоящее", "воля", "", false),
			drawnCard("Жрица", "Будущее", "интуиция", "", false),
		},
	})
	if err != nil {
		t.Fatal("Failed to interpret:", err)
	}

	for _, want := range []string{
		"В прошлом прослеживается влияние карты Шут",
		"В настоящей ситуации Маг предполагает воля",
		"В будущем возможно развитие в направлении интуиция, как указывает карта Жрица",
		"Общая рекомендация",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Interpretation missing %q:\n%s", want, text)
		}
	}
}

func TestTemplateInterpreterHandlesAnySpreadSize(t *testing.T) {
	one, err := TemplateInterpreter{}.Interpret(context.Background(), InterpretInput{
		Cards: []models.DrawnCard{drawnCard("Шут", "Совет", "начало", "", false)},
	})
	if err != nil {
		t.Fatal("Failed to interpret one card:", err)
	}
	if !strings.Contains(one, "Шут") || !strings.Contains(one, "Общая рекомендация") {
		t.Errorf("Unexpected one-card interpretation:\n%s", one)
	}

	cards := make([]models.DrawnCard, 0, 5)
	for _, name := range []string{"Шут", "Маг", "Жрица", "Императрица", "Император"} {
		cards = append(cards, drawnCard(name, "Позиция "+name, "значение "+name, "", false))
	}
	five, err := TemplateInterpreter{}.Interpret(context.Background(), InterpretInput{Cards: cards})
	if err != nil {
		t.Fatal("Failed to interpret five cards:", err)
	}
	if !strings.Contains(five, "В позиции «Позиция Императрица» карта Императрица") {
		t.Errorf("Expected a per-position paragraph for the fourth card:\n%s", five)
	}

	if _, err := (TemplateInterpreter{}).Interpret(context.Background(), InterpretInput{}); err == nil {
		t.Error("Expected an error for an empty draw")
	}
}
