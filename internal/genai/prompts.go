package genai

import "fmt"

// languageNames maps the language codes the web widget sends to names the
// models understand reliably.
var languageNames = map[string]string{
	"hi": "Hindi",
	"te": "Telugu",
	"ta": "Tamil",
	"kn": "Kannada",
	"mr": "Marathi",
	"bn": "Bengali",
	"gu": "Gujarati",
	"ur": "Urdu",
	"ml": "Malayalam",
	"en": "English",
}

// LanguageName returns a display name for code, or code itself if unknown.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

const translationSystemPrompt = `You translate short search requests from parents, teachers and students for a school learning portal.
Translate the user's message into English and reduce it to the search keywords only.

Rules:
- Reply with the English keywords on a single line, nothing else.
- Keep class, grade, standard and age numbers (e.g. "class 5", "age 8").
- Keep subject names (maths, science, evs, hindi, telugu, english).
- Do not add quotes, punctuation, explanations or greetings.

Examples:
"मुझे बंदरों की तस्वीरें चाहिए" -> monkey pictures
"కక్ష్య 5 గణితం" -> class 5 maths`

// TranslationPrompt builds the user turn for translating text from lang.
func TranslationPrompt(text, lang string) string {
	return fmt.Sprintf("Language: %s\nMessage: %s", LanguageName(lang), text)
}

const greetingSystemPrompt = `You are the MySchool Assistant on portal.myschoolct.com, a learning portal with image banks (animals, birds, flowers, fruits, vegetables, insects, professions), rhymes, stories, comics, puzzles and class-wise material from nursery to class 10.

Reply to the user's greeting in one or two short, friendly sentences and invite them to search, for example for "animals", "Class 5 Maths" or "Age 8 resources".
Reply in English. Do not use markdown.`
