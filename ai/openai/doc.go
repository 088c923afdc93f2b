// Package openai implements the ai interfaces against OpenAI-compatible
// HTTP APIs. It targets local servers such as Ollama, LocalAI and vLLM,
// authenticating with a placeholder token.
package openai
