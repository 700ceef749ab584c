package quiz

// Prompt templates for quiz generation and grading. The instruction goes into
// the system turn, the filled template into the user turn.

const questionInstruction = "You are a quiz master. You write exactly one short exam question " +
	"that can be answered from the given excerpt alone. Reply with the question only, " +
	"no preamble, no answer."

const questionTemplate = "Excerpt:\n%s\n\nWrite one exam question about this excerpt."

const gradingInstruction = "You are a strict but fair examiner. Judge the student's answer " +
	"against the provided source excerpts only. Start with a verdict (correct, partially " +
	"correct, or incorrect), then give a short explanation citing the excerpts."

const gradingTemplate = "Source excerpts:\n%s\n\nQuestion: %s\n\nStudent's answer: %s\n\nGrade the answer."
