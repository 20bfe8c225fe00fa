package protocol

import (
	"bufio"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/poiesic/subseek/core"
)

// ErrNoRequest is returned when the input holds no request line.
var ErrNoRequest = errors.New("no request line")

// Request keys.
const (
	KeyQuery         = "query"
	KeyMinRatio      = "min_ratio"
	KeyMinSimilarity = "min_similarity"
	KeyMaxResults    = "max_results"
)

// ParseRequestLine parses a request line into search parameters.
//
// Pairs are split on '&' and then on the first '='. Pairs without '=' and
// unknown keys are ignored. Thresholds that do not parse keep their defaults,
// and a max_results that does not parse means unbounded. The query value is
// kept as-is; encoded spaces are handled by the query normalizer.
func ParseRequestLine(line string) core.SearchParams {
	params := core.DefaultSearchParams("")
	for _, pair := range strings.Split(line, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		apply(&params, key, value)
	}
	return params
}

// ParseValues builds search parameters from decoded URL query values with the
// same fallbacks as ParseRequestLine. The first value of each key wins.
func ParseValues(values url.Values) core.SearchParams {
	params := core.DefaultSearchParams("")
	for _, key := range []string{KeyQuery, KeyMinRatio, KeyMinSimilarity, KeyMaxResults} {
		if v, ok := values[key]; ok && len(v) > 0 {
			apply(&params, key, v[0])
		}
	}
	return params
}

// ReadRequest reads the first line of r and parses it.
func ReadRequest(r io.Reader) (core.SearchParams, error) {
	reader := bufio.NewReader(r)
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return core.SearchParams{}, ErrNoRequest
		}
		return core.SearchParams{}, err
	}
	line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
	return ParseRequestLine(line), nil
}

func apply(params *core.SearchParams, key, value string) {
	switch key {
	case KeyQuery:
		params.Query = value
	case KeyMinRatio:
		params.MinMatchRatio = parseFloat(value, core.DefaultMinMatchRatio)
	case KeyMinSimilarity:
		params.MinOriginalSimilarity = parseFloat(value, core.DefaultMinOriginalSimilarity)
	case KeyMaxResults:
		// Values outside the 32-bit range are treated as absent.
		params.MaxResults = nil
		if n, err := strconv.ParseInt(value, 10, 32); err == nil {
			params.MaxResults = core.Limit(int(n))
		}
	}
}

func parseFloat(value string, fallback float64) float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return v
}
