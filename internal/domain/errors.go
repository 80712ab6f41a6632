package domain

import "errors"

var (
	// ErrConfiguration signals a missing or invalid configuration parameter.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrRetrieval signals that the vector store is unreachable or a query failed.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrLLMCall signals that a provider completion call failed or timed out.
	ErrLLMCall = errors.New("llm call failed")
	// ErrMetadataParse signals malformed JSON in an LLM metadata response.
	ErrMetadataParse = errors.New("metadata parse failed")
	// ErrNotConnected signals use of the store before Connect or after Close.
	ErrNotConnected = errors.New("store not connected")
)
