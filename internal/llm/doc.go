// Package llm provides the language model adapters used to classify dishes
// against a client's dietary restrictions. It supports OpenAI, Anthropic and
// Gemini behind one Client interface.
package llm
