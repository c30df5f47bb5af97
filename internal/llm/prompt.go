package llm

import (
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

const questionTemplate = `You are an expert exam question analyzer.
You will receive text extracted from an image of a multiple-choice question (with options like A, B, C, D).

Your job:
1. Read the question and its answer options carefully.
2. Extract **all answer options (A, B, C, D, etc.)** from the text.
3. For **each option**, indicate whether it is correct (true) or incorrect (false).
4. Provide a short explanation **in {{.explanation_language}}** for every option (why it is correct or incorrect).
5. Return the output **strictly** in the following JSON format (include ALL options, not just the correct one):

{
    "question": "Here is the question text without the options",
    "answer": [
        {
            "option": "Option A text in english",
            "isCorrect": true or false,
            "explanation": "Explanation in {{.explanation_language}}"
        },
        {
            "option": "Option B text in english",
            "isCorrect": true or false,
            "explanation": "Explanation in {{.explanation_language}}"
        }
    ]
}

Rules:
- You must always include ALL options found in the text in the array.
- If the text has more or fewer options, adjust accordingly.
- Do NOT include extra explanations or text outside the JSON.
- Use clear {{.explanation_language}} grammar and reasoning.
- Ignore unrelated words like "hideAnswer", "Explanation", or "Answer:".

---

Now analyze the following question and generate the JSON response:

{{.question_text}}
`

// NewQuestionPrompt returns the instruction template. It takes the variables
// question_text and explanation_language.
func NewQuestionPrompt() prompts.PromptTemplate {
	return prompts.NewPromptTemplate(questionTemplate, []string{"question_text", "explanation_language"})
}

// buildPrompt fills the template for one question.
func buildPrompt(tmpl prompts.PromptTemplate, text, language string) (string, error) {
	out, err := tmpl.Format(map[string]any{
		"question_text":        text,
		"explanation_language": language,
	})
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}
	return out, nil
}
