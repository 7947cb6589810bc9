package shared

import (
	"net/http/httptest"
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain date", raw: "2025-03-14", want: "2025-03-14"},
		{name: "rfc3339", raw: "2025-03-14T09:30:00Z", want: "2025-03-14"},
		{name: "empty is zero", raw: "", want: "0001-01-01"},
		{name: "garbage", raw: "14/03/2025", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseDate(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := parsed.Format("2006-01-02"); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", query: "", wantLimit: 20, wantOffset: 0},
		{name: "explicit", query: "?limit=50&offset=10", wantLimit: 50, wantOffset: 10},
		{name: "clamped to max", query: "?limit=500", wantLimit: 100, wantOffset: 0},
		{name: "negative ignored", query: "?limit=-5&offset=-1", wantLimit: 20, wantOffset: 0},
		{name: "non numeric ignored", query: "?limit=abc", wantLimit: 20, wantOffset: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/"+tc.query, nil)
			p := ParsePagination(req, 20, 100)
			if p.Limit != tc.wantLimit || p.Offset != tc.wantOffset {
				t.Fatalf("got limit=%d offset=%d, want limit=%d offset=%d", p.Limit, p.Offset, tc.wantLimit, tc.wantOffset)
			}
		})
	}
}

func TestValidatorDateOrder(t *testing.T) {
	v := NewValidator()
	start, ok := v.Date("from", "2025-05-10")
	if !ok {
		t.Fatal("expected from to parse")
	}
	end, ok := v.Date("to", "2025-05-01")
	if !ok {
		t.Fatal("expected to to parse")
	}
	v.DateOrder("from", start, "to", end)
	if !v.HasIssues() {
		t.Fatal("expected issues for reversed range")
	}
}

func TestValidatorEnum(t *testing.T) {
	v := NewValidator()
	v.Enum("status", "Pending", []string{"pending", "approved"}, "invalid status")
	if v.HasIssues() {
		t.Fatal("case-insensitive match should not raise an issue")
	}
	v.Enum("status", "bogus", []string{"pending", "approved"}, "invalid status")
	if !v.HasIssues() {
		t.Fatal("expected issue for unknown value")
	}
}

func TestValidatorRequired(t *testing.T) {
	v := NewValidator()
	v.Required("name", "   ", "name is required")
	if !v.HasIssues() {
		t.Fatal("expected issue for blank value")
	}
	if len(v.Issues()) != 1 {
		t.Fatalf("got %d issues, want 1", len(v.Issues()))
	}
}
