package core

import "fmt"

const (
	// DefaultMinMatchRatio is the minimum match ratio used when none is given.
	DefaultMinMatchRatio = 50.0

	// DefaultMinOriginalSimilarity is the minimum fragment similarity used when none is given.
	DefaultMinOriginalSimilarity = 0.0
)

// SearchParams holds everything a single search needs besides the corpus.
type SearchParams struct {
	// Query is the raw query string; it is normalized by ParseQuery.
	Query string

	// MinMatchRatio is the minimum LCS match percentage, in [0,100].
	MinMatchRatio float64

	// MinOriginalSimilarity is the minimum precomputed fragment score, in [0,1].
	MinOriginalSimilarity float64

	// MaxResults caps the number of results. Nil means unbounded.
	MaxResults *int
}

// DefaultSearchParams returns parameters for query with documented defaults.
func DefaultSearchParams(query string) SearchParams {
	return SearchParams{
		Query:                 query,
		MinMatchRatio:         DefaultMinMatchRatio,
		MinOriginalSimilarity: DefaultMinOriginalSimilarity,
	}
}

// Limit returns a result cap suitable for SearchParams.MaxResults.
func Limit(n int) *int {
	return &n
}

// Validate checks thresholds and the result cap.
// It does not look at the query; ParseQuery does that.
func (p SearchParams) Validate() error {
	if !(p.MinMatchRatio >= 0 && p.MinMatchRatio <= 100) {
		return fmt.Errorf("%w: min match ratio must be between 0 and 100, got %v", ErrInvalidThreshold, p.MinMatchRatio)
	}
	if !(p.MinOriginalSimilarity >= 0 && p.MinOriginalSimilarity <= 1) {
		return fmt.Errorf("%w: min original similarity must be between 0 and 1, got %v", ErrInvalidThreshold, p.MinOriginalSimilarity)
	}
	if p.MaxResults != nil && *p.MaxResults <= 0 {
		return fmt.Errorf("%w: max results must be greater than 0, got %d", ErrInvalidThreshold, *p.MaxResults)
	}
	return nil
}

// Prepare validates p and normalizes its query.
func (p SearchParams) Prepare() (Query, error) {
	query, err := ParseQuery(p.Query)
	if err != nil {
		return Query{}, err
	}
	if err := p.Validate(); err != nil {
		return Query{}, err
	}
	return query, nil
}
