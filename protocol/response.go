package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/poiesic/subseek/core"
	"github.com/poiesic/subseek/search"
)

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Unlimited is reported as max_results when no cap was requested.
const Unlimited = "unlimited"

// Hit is the wire form of one ranked result.
type Hit struct {
	Filename   string  `json:"filename"`
	Timestamp  string  `json:"timestamp"`
	Similarity float64 `json:"similarity"`
	Text       string  `json:"text"`
	MatchRatio float64 `json:"match_ratio"`
	ExactMatch bool    `json:"exact_match"`
}

// Response is the envelope written when there are no hits, and by the HTTP API.
type Response struct {
	Status      string   `json:"status"`
	Data        []Hit    `json:"data"`
	Count       int      `json:"count"`
	Folder      string   `json:"folder"`
	MaxResults  string   `json:"max_results"`
	Message     string   `json:"message,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ErrorResponse is written when a request fails.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewHit converts a ranked result to its wire form.
func NewHit(r core.RankedResult) Hit {
	return Hit{
		Filename:   r.DocumentName,
		Timestamp:  r.Timestamp,
		Similarity: r.OriginalSimilarity,
		Text:       r.Text,
		MatchRatio: r.MatchRatio,
		ExactMatch: r.ExactMatch,
	}
}

// NewResponse builds the envelope for a finished search. A search without
// hits carries a message and suggestions for loosening the request.
func NewResponse(result *search.Result, folder string) Response {
	resp := Response{
		Status:     StatusSuccess,
		Data:       make([]Hit, 0, len(result.Hits)),
		Count:      len(result.Hits),
		Folder:     folder,
		MaxResults: formatMaxResults(result.Params.MaxResults),
	}
	for _, h := range result.Hits {
		resp.Data = append(resp.Data, NewHit(h))
	}

	if result.NoMatches() {
		resp.Message = fmt.Sprintf("no results matching '%s'", result.Params.Query)
		resp.Suggestions = Suggestions(result.Params)
	}
	return resp
}

// Suggestions lists ways to get results for params.
func Suggestions(params core.SearchParams) []string {
	return []string{
		"check that the query is spelled correctly",
		fmt.Sprintf("try lowering the minimum match ratio (current: %s%%)", formatFloat(params.MinMatchRatio)),
		fmt.Sprintf("try lowering the minimum original similarity (current: %s)", formatFloat(params.MinOriginalSimilarity)),
		"try shorter keywords",
	}
}

// NewErrorResponse builds the error envelope for err.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Status:  StatusError,
		Message: ErrorMessage(err),
	}
}

// ErrorMessage returns the user-facing message for err.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyQuery),
		errors.Is(err, core.ErrInvalidThreshold),
		errors.Is(err, core.ErrCorpusUnavailable),
		errors.Is(err, ErrNoRequest):
		return err.Error()
	default:
		return "search failed: " + err.Error()
	}
}

// WriteResult writes a finished search in the line format: one JSON object
// per hit, or the no-match envelope when there are none.
func WriteResult(w io.Writer, result *search.Result, folder string) error {
	enc := newEncoder(w)
	if result.NoMatches() {
		return enc.Encode(NewResponse(result, folder))
	}
	for _, h := range result.Hits {
		if err := enc.Encode(NewHit(h)); err != nil {
			return err
		}
	}
	return nil
}

// WriteError writes the error envelope for err.
func WriteError(w io.Writer, err error) error {
	return newEncoder(w).Encode(NewErrorResponse(err))
}

// WriteJSON writes v as a single JSON document followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	return newEncoder(w).Encode(v)
}

// Subtitle text is written verbatim; markup such as <i> is not escaped.
func newEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

func formatMaxResults(limit *int) string {
	if limit == nil {
		return Unlimited
	}
	return strconv.Itoa(*limit)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
