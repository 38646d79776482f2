package gigachat

import (
	"fmt"
	"strings"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
)

var availableGenres = []string{
	"pop", "dance", "electronic", "indie",
	"hip_hop", "rap", "trap", "rnb",
	"rock", "metal", "punk", "alternative",
	"classical", "instrumental", "ambient", "jazz",
	"folk", "latin", "soundtrack", "blues",
}

var languageNames = map[string]string{
	"ru":           "русский",
	"en":           "английский",
	"instrumental": "инструментальная музыка",
}

func buildAnalysisPrompt(intent domain.UserIntent) string {
	var b strings.Builder

	b.WriteString("Ты умный музыкальный ассистент. Твоя задача — понять настроение пользователя и подобрать идеальные параметры музыки.\n\nКОНТЕКСТ:\n")

	if intent.AudioEmotion != "" {
		profile := domain.ProfileFor(intent.AudioEmotion)
		fmt.Fprintf(&b, "По голосу пользователя определена эмоция: %s (%s)\nУверенность: %.0f%%\n",
			intent.AudioEmotion, profile.Description, intent.EmotionScore*100)
	}
	if intent.Transcript != "" {
		fmt.Fprintf(&b, "Пользователь сказал: %q\n", intent.Transcript)
	}
	if len(intent.Genres) > 0 {
		fmt.Fprintf(&b, "Из текста извлечены жанры: %s\n", strings.Join(intent.Genres, ", "))
	}
	if intent.Language != "" {
		name := languageNames[intent.Language]
		if name == "" {
			name = intent.Language
		}
		fmt.Fprintf(&b, "Предпочтение языка: %s\n", name)
	}
	if len(intent.MoodKeywords) > 0 {
		fmt.Fprintf(&b, "Ключевые слова настроения: %s\n", strings.Join(intent.MoodKeywords, ", "))
	}

	fmt.Fprintf(&b, "\nДОСТУПНЫЕ ЖАНРЫ В БАЗЕ: %s\n", strings.Join(availableGenres, ", "))
	b.WriteString("ДОСТУПНЫЕ ЯЗЫКИ: ru (русский), en (английский), instrumental (без слов), other (любой)\n\n")

	b.WriteString(`ТВОЯ ЗАДАЧА:
1. Проанализируй эмоциональное состояние пользователя (по голосу + по словам)
2. Определи, какую музыку он хочет: поднять настроение, успокоиться, зарядиться энергией, погрустить вместе?
3. Подбери музыкальные параметры:
   - valence (0-1): позитивность. 0 = грустная, 1 = веселая
   - energy (0-1): энергичность. 0 = спокойная, 1 = интенсивная
   - danceability (0-1): танцевальность
   - acousticness (0-1): акустичность. 0 = электронная, 1 = живые инструменты
   - tempo (60-200): темп в BPM
4. Уточни фильтры: genres (1-3 из доступных), language, year_start/year_end если упомянут период, artist если упомянут исполнитель
5. РАСПОЗНАВАНИЕ АРТИСТА: распознавание речи может искажать имена ("OG Booda", "О.Г. Будо" = "OG Buda"; "окси" = "Oxxxymiron"). Верни наиболее вероятное каноническое имя.

ВАЖНО:
- Если пользователь грустит, НЕ всегда нужна грустная музыка — иногда нужно поднять настроение
- Если эмоция angry, но текст нейтральный — доверяй голосу больше

Верни ТОЛЬКО JSON (без markdown, без пояснений):
{
    "mood_interpretation": "краткое описание того, что хочет пользователь",
    "features": {"valence": 0.5, "energy": 0.5, "danceability": 0.5, "acousticness": 0.3, "tempo": 120},
    "filters": {"genres": ["pop"], "language": null, "year_start": null, "year_end": null, "artist": null},
    "explanation": "почему такой выбор параметров"
}`)

	return b.String()
}

func buildResponsePrompt(tracks []domain.ValidatedTrack, intent domain.UserIntent, mood string) string {
	var b strings.Builder
	b.WriteString("Ты дружелюбный музыкальный бот. Пользователь попросил подобрать музыку.\n\n")

	if intent.AudioEmotion != "" {
		fmt.Fprintf(&b, "Эмоция в голосе: %s\n", intent.AudioEmotion)
	}
	if mood != "" {
		fmt.Fprintf(&b, "Интерпретация настроения: %s\n", mood)
	}

	b.WriteString("\nПодобранные треки:\n")
	for i, t := range tracks {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "- %s — %s\n", t.Artist, t.Name)
	}

	b.WriteString("\nНапиши короткий дружелюбный ответ (2-3 предложения): почему подобраны именно эти треки. Без списка треков, без markdown.")
	return b.String()
}

func buildClarificationPrompt(intent domain.UserIntent) string {
	var b strings.Builder
	b.WriteString("Ты дружелюбный музыкальный бот. Пользователь сказал слишком мало, чтобы подобрать музыку.\n")
	if intent.Transcript != "" {
		fmt.Fprintf(&b, "Он сказал: %q\n", intent.Transcript)
	}
	b.WriteString("Задай один короткий уточняющий вопрос: какое у него настроение или какой жанр он хочет. Без markdown.")
	return b.String()
}
