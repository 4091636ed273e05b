package config

import "time"

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewLLMForTest(openaiKey, claudeKey, geminiProject, preferred string) *LLM {
	return &LLM{
		openaiAPIKey:   openaiKey,
		claudeAPIKey:   claudeKey,
		geminiProject:  geminiProject,
		geminiLocation: "us-central1",
		preferred:      preferred,
	}
}

func NewEmbeddingForTest(provider string, dimension int) *Embedding {
	return &Embedding{
		provider:  provider,
		model:     "text-embedding-3-small",
		dimension: dimension,
		retryMax:  time.Second,
	}
}

func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{backend: backend, projectID: projectID}
}

func NewAppForTest(path, anonymizer string) *App {
	return &App{path: path, anonymizer: anonymizer}
}
