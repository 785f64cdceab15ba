package translation

import "fmt"

func buildTranslatePrompt(text, targetLang string) string {
	return fmt.Sprintf(`
Translate the following text into %s.
Requirements:
1. Keep the format and structure of the original
2. Convey the tone and style of the original accurately
3. Keep technical terminology precise
4. Adapt culture-specific expressions so they read naturally in the target culture
5. Where a literal translation is not possible, give the closest natural expression

Original text:
%s
`, targetLang, text)
}

func buildImprovePrompt(text, lang string) string {
	return fmt.Sprintf(`
Polish and improve the following %s text.
Requirements:
1. Fix grammar and word choice errors
2. Make the text read more fluently and naturally
3. Keep the meaning and tone of the original
4. Prefer idiomatic expressions
5. Make sure technical terminology is accurate

Original text:
%s
`, lang, text)
}
