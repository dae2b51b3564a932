package summarize

import "strings"

// SummaryPrompt prefixes every chunk sent for summarization.
const SummaryPrompt = "Summarize the following text:\n\n"

// FailureSentinel replaces the partial summary of a chunk whose
// generation call failed.
const FailureSentinel = "Error summarizing text"

const chatPrompt = `You are answering questions about a document. Use the context below to answer the prompt. If the context does not contain the answer, say so.

Context:
`

// BuildChatPrompt combines caller-supplied context and prompt into the
// single instruction sent to the generator.
func BuildChatPrompt(context, prompt string) string {
	var sb strings.Builder
	sb.WriteString(chatPrompt)
	sb.WriteString(context)
	sb.WriteString("\n\nPrompt:\n")
	sb.WriteString(prompt)
	return sb.String()
}
