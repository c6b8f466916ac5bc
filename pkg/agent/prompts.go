package agent

import (
	"fmt"
	"strings"

	"github.com/entrhq/pmchat/pkg/knowledge"
)

// AnswerSystemPrompt instructs the answering model.
const AnswerSystemPrompt = `You are an AI assistant tasked with answering questions about a project using the provided knowledge base.
Your goal is to provide informed and helpful answers based on the information available in the knowledge base.
Always refer to the knowledge base first when answering questions.
If the knowledge base doesn't contain relevant information, politely state that you don't have that information and suggest what kind of information might be helpful to add to the knowledge base.`

// ExtractSystemPrompt instructs the extraction model. The category list is
// filled in from knowledge.Categories.
var ExtractSystemPrompt = buildExtractSystemPrompt()

func buildExtractSystemPrompt() string {
	var b strings.Builder
	b.WriteString(`You are an AI assistant tasked with updating a project knowledge base based on new information from user interactions.
Your goals are:
1. Extract relevant project management information from the user's message and the AI's response.
2. Categorize the information into the appropriate project management aspects.
3. Update the knowledge base with new or modified information.
4. Ensure the knowledge base remains consistent and well-structured.

The knowledge base is structured around the following aspects of Project Management:
`)
	for _, c := range knowledge.Categories() {
		b.WriteString("- ")
		b.WriteString(c)
		b.WriteString("\n")
	}
	b.WriteString(`
Provide your updates as a JSON object that can be merged into the existing knowledge base.
Use only the aspects listed above as top-level keys. Each aspect maps short keys to string values.
Include only new or changed facts. If there is nothing to record, return {}.`)
	return b.String()
}

// answerInput formats the user turn sent to the answering model.
func answerInput(kbContext, message string) string {
	return fmt.Sprintf("Knowledge Base:\n%s\n\nUser Question: %s", kbContext, message)
}

// extractInput formats the user turn sent to the extraction model.
func extractInput(message, answer, kbContext string) string {
	return fmt.Sprintf("User message: %s\nAI response: %s\nCurrent KB: %s\n\nProvide KB updates:", message, answer, kbContext)
}
