package core

import (
	"errors"
	"testing"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantTerms []string
		wantMulti bool
		wantErr   error
	}{
		{
			name:      "single term is lower-cased",
			raw:       "Quick",
			wantTerms: []string{"quick"},
		},
		{
			name:      "literal space splits",
			raw:       "Quick Fox",
			wantTerms: []string{"quick", "fox"},
			wantMulti: true,
		},
		{
			name:      "encoded space splits",
			raw:       "quick%20fox",
			wantTerms: []string{"quick", "fox"},
			wantMulti: true,
		},
		{
			name:      "repeated whitespace collapses",
			raw:       "  quick   brown%20%20fox ",
			wantTerms: []string{"quick", "brown", "fox"},
			wantMulti: true,
		},
		{
			name:      "non-ascii is folded",
			raw:       "ÉCOLE",
			wantTerms: []string{"école"},
		},
		{
			name:    "empty string",
			raw:     "",
			wantErr: ErrEmptyQuery,
		},
		{
			name:    "only spaces",
			raw:     "   ",
			wantErr: ErrEmptyQuery,
		},
		{
			name:    "only encoded spaces",
			raw:     "%20%20",
			wantErr: ErrEmptyQuery,
		},
		{
			name:    "only a tab",
			raw:     "\t",
			wantErr: ErrEmptyQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuery(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseQuery() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseQuery() error = %v, want nil", err)
			}
			if got.Raw != tt.raw {
				t.Errorf("ParseQuery().Raw = %q, want %q", got.Raw, tt.raw)
			}
			if got.Multi != tt.wantMulti {
				t.Errorf("ParseQuery().Multi = %v, want %v", got.Multi, tt.wantMulti)
			}
			if len(got.Terms) != len(tt.wantTerms) {
				t.Fatalf("ParseQuery().Terms = %q, want %q", got.Terms, tt.wantTerms)
			}
			for i := range got.Terms {
				if got.Terms[i] != tt.wantTerms[i] {
					t.Errorf("ParseQuery().Terms[%d] = %q, want %q", i, got.Terms[i], tt.wantTerms[i])
				}
			}
		})
	}
}

func TestQuery_ComparisonString(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "single term", raw: "Fox", want: "fox"},
		{name: "terms joined with one space", raw: "quick%20%20fox", want: "quick fox"},
		{name: "trimmed multi-term", raw: " quick fox ", want: "quick fox"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseQuery(tt.raw)
			if err != nil {
				t.Fatalf("ParseQuery() error = %v", err)
			}
			if got := q.ComparisonString(); got != tt.want {
				t.Errorf("ComparisonString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuery_ComparisonStringZeroValue(t *testing.T) {
	if got := (Query{}).ComparisonString(); got != "" {
		t.Errorf("ComparisonString() = %q, want empty", got)
	}
}
