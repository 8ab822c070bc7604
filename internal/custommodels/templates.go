package custommodels

import "aurora/pkg/models"

// BuiltinTemplates returns the six fixed custom-model starting points
// served by GET /api/templates.
func BuiltinTemplates() []models.ModelTemplate {
	return []models.ModelTemplate{
		{
			ID:           "assistant",
			Name:         "General Assistant",
			Description:  "A helpful, balanced general-purpose assistant.",
			SystemPrompt: "You are a helpful, accurate, and concise assistant.",
			Template:     "{{prompt}}",
			Parameters:   models.ModelParameters{Temperature: 0.7, TopP: 0.9, MaxTokens: 1024},
		},
		{
			ID:           "coder",
			Name:         "Coding Assistant",
			Description:  "Focused on producing correct, idiomatic code with minimal commentary.",
			SystemPrompt: "You are an expert software engineer. Answer with working code and brief explanations.",
			Template:     "{{prompt}}",
			Parameters:   models.ModelParameters{Temperature: 0.2, TopP: 0.95, MaxTokens: 2048},
		},
		{
			ID:           "writer",
			Name:         "Creative Writer",
			Description:  "Tuned for narrative and creative prose.",
			SystemPrompt: "You are a skilled creative writer with an evocative, precise style.",
			Template:     "{{prompt}}",
			Parameters:   models.ModelParameters{Temperature: 1.0, TopP: 0.95, MaxTokens: 2048},
		},
		{
			ID:           "analyst",
			Name:         "Data Analyst",
			Description:  "Structured, numerate reasoning over data and documents.",
			SystemPrompt: "You are a meticulous data analyst. Show your reasoning and cite assumptions.",
			Template:     "{{prompt}}",
			Parameters:   models.ModelParameters{Temperature: 0.3, TopP: 0.9, MaxTokens: 1536},
		},
		{
			ID:           "translator",
			Name:         "Translator",
			Description:  "Literal, faithful translation between languages.",
			SystemPrompt: "You are a professional translator. Preserve meaning, tone, and register exactly.",
			Template:     "{{prompt}}",
			Parameters:   models.ModelParameters{Temperature: 0.1, TopP: 0.9, MaxTokens: 1024},
		},
		{
			ID:           "chat",
			Name:         "Casual Chat",
			Description:  "Light, conversational tone for everyday chat.",
			SystemPrompt: "You are a friendly, casual conversational partner.",
			Template:     "{{prompt}}",
			Parameters:   models.ModelParameters{Temperature: 0.9, TopP: 0.95, MaxTokens: 512},
		},
	}
}
