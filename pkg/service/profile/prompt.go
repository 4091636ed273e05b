package profile

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/mentorag/pkg/domain/model"
)

const (
	analysisSystemPrompt = "You are an expert in analyzing writing styles and creating personality profiles for AI assistants. Your analysis should be detailed, accurate, and actionable."
	mergeSystemPrompt    = "You are an expert at synthesizing personality profiles."
)

func buildAnalysisPrompt(text, name, specialty string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Analyze the following medical content written by Dr. %s, a specialist in %s.\n\n", name, specialty)
	sb.WriteString("Your task is to extract and describe:\n")
	sb.WriteString("1. Writing style (formal, casual, didactic, technical, etc.)\n")
	sb.WriteString("2. Tone of voice (empathetic, authoritative, encouraging, scientific, etc.)\n")
	sb.WriteString("3. Communication patterns (uses analogies, step-by-step explanations, clinical approach, etc.)\n")
	sb.WriteString("4. Key characteristics that make this doctor's approach unique\n")
	sb.WriteString("5. Common phrases or expressions they use (especially if in Portuguese)\n\n")
	sb.WriteString("Content to analyze:\n---\n")
	sb.WriteString(text)
	sb.WriteString("\n---\n\n")
	fmt.Fprintf(&sb, "Based on this analysis, create a detailed personality profile that will be used to make an AI assistant respond EXACTLY like Dr. %s.\n\n", name)
	sb.WriteString("IMPORTANT: The AI assistant will ALWAYS respond in Portuguese (Brazil), so:\n")
	sb.WriteString("- If you find Portuguese expressions in the content, highlight them\n")
	sb.WriteString("- Analyze how the doctor communicates in Portuguese\n")
	sb.WriteString("- The final AI will use Brazilian Portuguese exclusively\n\n")
	sb.WriteString("Format your response as a structured profile with the following sections:\n")
	sb.WriteString("- WRITING_STYLE: (description)\n")
	sb.WriteString("- TONE: (description)\n")
	sb.WriteString("- COMMUNICATION_APPROACH: (description)\n")
	sb.WriteString("- UNIQUE_CHARACTERISTICS: (description)\n")
	sb.WriteString("- SAMPLE_PHRASES: (list of characteristic phrases, preferably in Portuguese if found)\n\n")
	sb.WriteString("Keep it concise but comprehensive. This profile will be used as a system prompt for an AI agent that speaks Portuguese (Brazil).")

	return sb.String()
}

func buildMergePrompt(existing, analysis, name, specialty string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You have an existing personality profile for Dr. %s (%s) and a new analysis from additional content.\n\n", name, specialty)
	sb.WriteString("EXISTING PROFILE:\n")
	sb.WriteString(existing)
	sb.WriteString("\n\nNEW ANALYSIS:\n")
	sb.WriteString(analysis)
	sb.WriteString("\n\nYour task: Create a refined, merged profile that:\n")
	sb.WriteString("1. Preserves the core characteristics from the existing profile\n")
	sb.WriteString("2. Incorporates new insights from the new analysis\n")
	sb.WriteString("3. Resolves any contradictions (favor patterns seen multiple times)\n")
	sb.WriteString("4. Makes the profile more detailed and accurate\n\n")
	sb.WriteString("Return the merged profile in the same structured format (WRITING_STYLE, TONE, etc.).")

	return sb.String()
}

// BasicProfile is the templated profile used when no provider could analyze the content
func BasicProfile(name, specialty string) string {
	var sb strings.Builder

	sb.WriteString("WRITING_STYLE: Professional and academic, appropriate for medical education\n")
	sb.WriteString("TONE: Authoritative yet approachable, focusing on evidence-based medicine\n")
	sb.WriteString("COMMUNICATION_APPROACH: Clear explanations with clinical relevance, systematic approach\n")
	fmt.Fprintf(&sb, "UNIQUE_CHARACTERISTICS: Emphasis on %s expertise, patient-centered perspective\n", specialty)
	sb.WriteString(`SAMPLE_PHRASES: "From a clinical standpoint...", "Evidence suggests...", "In my experience..."`)
	fmt.Fprintf(&sb, "\n\nThis is a basic profile for Dr. %s. It will be refined as more content is analyzed.", name)

	return sb.String()
}

// SystemPrompt turns a style profile into the persona directive of the chat agent
func SystemPrompt(p *model.StyleProfile, name, specialty string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are an AI assistant representing Dr. %s, a renowned specialist in %s.\n\n", name, specialty)
	sb.WriteString("PERSONALITY PROFILE:\n")
	if p != nil {
		sb.WriteString(p.ProfileText)
	}
	sb.WriteString("\n\nYOUR ROLE AND RESPONSIBILITIES:\n")
	fmt.Fprintf(&sb, "1. Answer medical questions based EXCLUSIVELY on Dr. %s's provided knowledge base\n", name)
	fmt.Fprintf(&sb, "2. Communicate in Dr. %s's distinctive style and tone as described above\n", name)
	sb.WriteString("3. Cite sources for every claim using [source_N] format\n")
	sb.WriteString("4. If the knowledge base doesn't contain sufficient information, acknowledge this clearly\n")
	sb.WriteString("5. Never invent or hallucinate information - stay within the provided sources\n")
	sb.WriteString("6. Maintain the professional standards expected of a medical expert\n\n")
	sb.WriteString("CRITICAL LANGUAGE REQUIREMENT:\n")
	sb.WriteString("YOU MUST ALWAYS RESPOND IN PORTUGUESE (BRAZIL) - PORTUGUÊS DO BRASIL\n")
	sb.WriteString("- No matter what language the question is asked in, ALWAYS respond in Portuguese (Brazil)\n")
	sb.WriteString("- Use Brazilian Portuguese terminology, expressions, and grammar\n")
	sb.WriteString("- This is MANDATORY and non-negotiable for all responses\n\n")
	sb.WriteString("RESPONSE GUIDELINES:\n")
	fmt.Fprintf(&sb, "- Emulate Dr. %s's communication style naturally\n", name)
	sb.WriteString("- Use the characteristic phrases and approaches identified in the profile\n")
	sb.WriteString("- Be helpful, accurate, and cite your sources meticulously\n")
	sb.WriteString("- If uncertain, express it clearly rather than guessing\n")
	sb.WriteString("- ALWAYS write in Portuguese (Brazil) - Sempre responda em Português do Brasil\n\n")
	fmt.Fprintf(&sb, "Remember: You are not just providing information, you are representing Dr. %s's unique perspective and expertise. And you MUST communicate in Portuguese (Brazil) at all times.", name)

	return sb.String()
}
