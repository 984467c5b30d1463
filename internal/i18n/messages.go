package i18n

// Disclaimer is the built-in reference disclaimer per locale, used when a
// project has no custom template.
var Disclaimer = map[Locale]string{
	LocaleUK: "Інформація має довідковий характер і не замінює консультацію лікаря.",
	LocaleRU: "Информация носит справочный характер и не заменяет консультацию врача.",
	LocaleEN: "This information is for reference only and does not replace a medical consultation.",
}

// AskQuestionPrompt is returned when the message carries no letters at all.
var AskQuestionPrompt = map[Locale]string{
	LocaleUK: "Будь ласка, сформулюйте питання або опишіть, що саме вас цікавить.",
	LocaleRU: "Пожалуйста, сформулируйте вопрос или опишите, что именно вас интересует.",
	LocaleEN: "Please ask a question or describe what you need help with.",
}

// ErrorGeneric is returned when the provider output violates the reply contract.
var ErrorGeneric = map[Locale]string{
	LocaleUK: "Вибачте, не вдалося сформувати структуровану відповідь. Спробуйте перефразувати запит.",
	LocaleRU: "Извините, не удалось сформировать структурированный ответ. Попробуйте переформулировать вопрос.",
	LocaleEN: "Sorry, I couldn't produce a structured answer. Please rephrase your question.",
}

// NoProvider is the deterministic reply when no generation provider is
// configured and the knowledge base has nothing to offer either.
var NoProvider = map[Locale]string{
	LocaleUK: "AI-провайдер не налаштований на цьому сервері. Додайте OPENAI_API_KEY, щоб увімкнути відповіді.",
	LocaleRU: "AI-провайдер не настроен на этом сервере. Добавьте OPENAI_API_KEY, чтобы включить ответы.",
	LocaleEN: "AI provider is not configured on this server. Add OPENAI_API_KEY to enable live responses.",
}

// RephrasePrompt is the fail-safe reply when the relevance retry also failed.
var RephrasePrompt = map[Locale]string{
	LocaleUK: "Вибачте, не вдалося надійно відповісти на це питання. Спробуйте перефразувати запит і повторіть.",
	LocaleRU: "Извините, не удалось надёжно ответить на этот вопрос. Переформулируйте запрос и попробуйте ещё раз.",
	LocaleEN: "Sorry, I couldn't reliably answer this question. Please rephrase it and try again.",
}

// SmokeTestResponse is the canned non-production reply for smoke-test probes.
var SmokeTestResponse = map[Locale]string{
	LocaleUK: "Це тестовий запит. Будь ласка, поставте питання, і я допоможу.",
	LocaleRU: "Это тестовый запрос. Пожалуйста, задайте вопрос, и я помогу.",
	LocaleEN: "This is a test request. Please ask a question and I'll help.",
}

// TriageWarning is the single localized red-flag warning attached by triage.
var TriageWarning = map[Locale]string{
	LocaleUK: "Якщо є сильні симптоми (рясна кровотеча, сильний біль, утруднене дихання, втрата свідомості) — негайно зверніться по медичну допомогу.",
	LocaleRU: "Если есть сильные симптомы (обильное кровотечение, сильная боль, затруднённое дыхание, потеря сознания) — срочно обратитесь за медицинской помощью.",
	LocaleEN: "If you have severe symptoms (heavy bleeding, severe pain, shortness of breath, loss of consciousness), seek urgent medical care.",
}

// AboutYourQuestion is the lead-in used to anchor a KB excerpt answer when
// the excerpt itself does not mention any query token.
var AboutYourQuestion = map[Locale]string{
	LocaleUK: "Щодо вашого питання:",
	LocaleRU: "По вашему вопросу:",
	LocaleEN: "About your question:",
}

// Text returns the message for the locale, falling back to Ukrainian which
// every table defines.
func Text(table map[Locale]string, locale Locale) string {
	if msg, ok := table[locale]; ok {
		return msg
	}
	return table[LocaleUK]
}
