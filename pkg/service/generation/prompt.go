package generation

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/service/citation"
	"github.com/secmon-lab/mentorag/pkg/service/profile"
)

// buildContext enumerates chunks as [source_1]..[source_N] and projects their citations
func buildContext(chunks []*model.Chunk) (string, []model.Citation) {
	var sb strings.Builder
	citations := make([]model.Citation, 0, len(chunks))

	for i, c := range chunks {
		fmt.Fprintf(&sb, "\n%s %s\n", citation.Marker(i+1), c.Text)
		citations = append(citations, c.Citation())
	}

	return sb.String(), citations
}

// buildSystemPrompt puts the persona directive first and the numbered sources after it
func buildSystemPrompt(input Input, contextText string) string {
	var sb strings.Builder

	if input.Profile != nil {
		sb.WriteString(profile.SystemPrompt(input.Profile, input.PersonaName, input.Specialty))
		sb.WriteString("\n\nPROVIDED KNOWLEDGE BASE:\n")
		sb.WriteString(contextText)
		sb.WriteString("\nRemember: Answer based ONLY on the provided sources above. Cite every claim using [source_N] format.")
		return sb.String()
	}

	fmt.Fprintf(&sb, "You are an AI assistant representing Dr. %s, a renowned medical expert.\n\n", input.PersonaName)
	sb.WriteString("Your role is to answer medical questions based EXCLUSIVELY on the knowledge provided below.\n\n")
	sb.WriteString("CRITICAL RULES:\n")
	sb.WriteString("1. Only use information from the provided sources\n")
	sb.WriteString("2. For every statement you make, cite the source using [source_N] format\n")
	sb.WriteString("3. If the provided sources don't contain enough information, say so clearly\n")
	sb.WriteString("4. Do not invent or hallucinate information\n")
	sb.WriteString("5. Maintain a professional, helpful tone appropriate for medical consultation\n\n")
	sb.WriteString("PROVIDED KNOWLEDGE:\n")
	sb.WriteString(contextText)

	return sb.String()
}

func buildUserPrompt(question string) string {
	return fmt.Sprintf("Question: %s\n\nPlease provide a detailed answer based on the sources above, with proper citations.", question)
}
