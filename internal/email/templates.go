package email

import (
	"fmt"
	"html"

	"github.com/simorakkaus/tarologist/internal/models"
)

func generateQuestionModerationText(question models.Question, category models.QuestionCategory) string {
	return fmt.Sprintf(`Поступил новый вопрос на модерацию.

Категория: %s
Текст вопроса: %s
ID вопроса: %s

Вопрос не будет показан пользователям до одобрения.`,
		category.Name, question.Text, question.ID)
}

func generateQuestionModerationHTML(question models.Question, category models.QuestionCategory) string {
	return fmt.Sprintf(`<html>
<body>
<h2>Новый вопрос на модерацию</h2>
<p><strong>Категория:</strong> %s</p>
<p><strong>Текст вопроса:</strong> %s</p>
<p><small>ID вопроса: %s</small></p>
<p>Вопрос не будет показан пользователям до одобрения.</p>
</body>
</html>`,
		html.EscapeString(category.Name),
		html.EscapeString(question.Text),
		html.EscapeString(question.ID))
}

func generateSuggestionText(login, body string) string {
	return fmt.Sprintf(`Пользователь %s отправил предложение:

%s`, login, body)
}
