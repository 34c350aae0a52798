package embedding

// Task types passed through to providers that distinguish them.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskSemanticSimilarity = "SEMANTIC_SIMILARITY"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}

// GenerateBatch embeds each text in order. It stops at the first provider
// error so callers never work with a partially aligned batch.
func GenerateBatch(p EmbeddingProvider, texts []string, taskType string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		res, err := p.Generate(text, taskType)
		if err != nil {
			return nil, err
		}
		vectors[i] = res.Embedding.Values
	}
	return vectors, nil
}
