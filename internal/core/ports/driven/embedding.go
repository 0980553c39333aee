package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - LM Studio (OpenAI-compatible /v1/embeddings endpoint)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Any other local inference server
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// More efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// This is determined by the model and must match the vector store's
	// configured dimensionality.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	// Used at startup to fail fast before committing to a sync pass.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
