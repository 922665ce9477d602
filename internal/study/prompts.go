package study

import "fmt"

// QuestionCount is the number of MCQs requested from the provider.
const QuestionCount = 15

const summaryPrompt = `Summarize the following video content for students.

Summarize the following video transcript or description for students using a friendly tone, clear subtopic headings with emojis, bullet points for key ideas, interactive prompts (like Tip or facts), and include a title, short intro, main content sections, a quick recap, examples that interact with real life, and a conclusion to make it engaging and study-friendly. Before each subtopic add one blank line, and provide detailed explanations with a few emojis. Use different heading levels depending on the situation, bullet points, numbers, and indentation for interactive structure.

Content to summarize:

%s`

const quizPrompt = `Based on the following educational summary, generate %[1]d multiple-choice questions in JSON format. Each question should include:

- id (string or number)
- question (string)
- choices (array of 4 strings)
- answer (string, copied exactly from one of the choices)
- explanation (string explaining why the correct answer is right and others are wrong)

Respond ONLY with a JSON array of %[1]d questions. No extra text or formatting.

Summary:

%[2]s`

func buildSummaryPrompt(text string) string {
	return fmt.Sprintf(summaryPrompt, text)
}

func buildQuizPrompt(summary string) string {
	return fmt.Sprintf(quizPrompt, QuestionCount, summary)
}
