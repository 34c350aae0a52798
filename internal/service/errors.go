package service

import "fmt"

// NoRelevantContentError means the full fallback chain (hybrid search,
// broadened search, abstracts) produced nothing usable.
type NoRelevantContentError struct {
	Topic string
}

func (e *NoRelevantContentError) Error() string {
	return fmt.Sprintf("no relevant content found for topic %q after all fallbacks", e.Topic)
}

// ContentQualityError means chunks were found but their aggregate
// relevance sits below the quality floor. Distinct from finding
// nothing: generating from unconvincing context is worse than failing
// loudly.
type ContentQualityError struct {
	Topic          string
	AggregateScore float64
	Floor          float64
}

func (e *ContentQualityError) Error() string {
	return fmt.Sprintf("content for topic %q scored %.3f, below quality floor %.3f", e.Topic, e.AggregateScore, e.Floor)
}
