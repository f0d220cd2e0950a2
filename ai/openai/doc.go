// Package openai implements the ai interfaces against OpenAI-compatible
// services (Ollama, LocalAI, vLLM, or the OpenAI API itself). All services
// created by one provider share a single rate limiter.
package openai
