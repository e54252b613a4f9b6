package resolver

import (
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/ramkansal/corpscout/pkg/plugin"
)

// stubFetcher answers from a fixed table of status codes and records every URL it was asked for.
type stubFetcher struct {
	status map[string]int
	calls  []string
}

func (f *stubFetcher) Name() string { return "stub" }

func (f *stubFetcher) Fetch(url string) (*plugin.PageData, error) {
	f.calls = append(f.calls, url)
	code, ok := f.status[url]
	if !ok {
		return &plugin.PageData{URL: url}, errors.New("dial tcp: no such host")
	}
	page := &plugin.PageData{URL: url, StatusCode: code}
	if code >= 300 {
		return page, errors.New(http.StatusText(code))
	}
	return page, nil
}

func (f *stubFetcher) Close() error { return nil }

func TestCandidates(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{
			name: "Acme Corp",
			want: []string{"acmecorp.com", "acmecorp.com", "acmecorp.co.jp", "acmecorp.co.jp"},
		},
		{
			name: "株式会社テスト",
			want: []string{"株式会社テスト.com", "テスト.com", "株式会社テスト.co.jp", "テスト.co.jp"},
		},
		{
			name: "ACME Inc.",
			want: []string{"acmeinc..com", "acme.com", "acmeinc..co.jp", "acme.co.jp"},
		},
		{
			name: "Foo llc Ltd.",
			want: []string{"foollcltd..com", "foo.com", "foollcltd..co.jp", "foo.co.jp"},
		},
		{
			name: "テスト　有限会社",
			want: []string{"テスト有限会社.com", "テスト.com", "テスト有限会社.co.jp", "テスト.co.jp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Candidates(tt.name)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Candidates(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestResolve_FirstSuccessWins(t *testing.T) {
	f := &stubFetcher{status: map[string]int{
		"https://acme.com":   http.StatusOK,
		"https://acme.co.jp": http.StatusOK,
	}}

	got, err := New(f).Resolve("ACME Inc.")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != "https://acme.com" {
		t.Errorf("Expected https://acme.com, got %q", got)
	}

	wantCalls := []string{"https://acmeinc..com", "https://acme.com"}
	if !reflect.DeepEqual(f.calls, wantCalls) {
		t.Errorf("Expected calls %v, got %v", wantCalls, f.calls)
	}
}

func TestResolve_SkipsNon200(t *testing.T) {
	f := &stubFetcher{status: map[string]int{
		"https://acmecorp.com":   http.StatusForbidden,
		"https://acmecorp.co.jp": http.StatusOK,
	}}

	got, err := New(f).Resolve("Acme Corp")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != "https://acmecorp.co.jp" {
		t.Errorf("Expected https://acmecorp.co.jp, got %q", got)
	}
	// The duplicate .com candidate is probed again
	if len(f.calls) != 3 {
		t.Errorf("Expected 3 probes, got %d: %v", len(f.calls), f.calls)
	}
}

func TestResolve_AcceptedButNot200(t *testing.T) {
	f := &stubFetcher{status: map[string]int{
		"https://acmecorp.com": http.StatusAccepted,
	}}

	got, err := New(f).Resolve("Acme Corp")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != "" {
		t.Errorf("Expected no homepage for a 202 answer, got %q", got)
	}
}

func TestResolve_AllFail(t *testing.T) {
	f := &stubFetcher{status: map[string]int{}}

	got, err := New(f).Resolve("Nowhere KK")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty result, got %q", got)
	}
	if len(f.calls) != 4 {
		t.Errorf("Expected all 4 candidates probed, got %d", len(f.calls))
	}
}

func TestResolve_EmptyName(t *testing.T) {
	f := &stubFetcher{}

	_, err := New(f).Resolve("   ")
	if !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName, got %v", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("Expected no probes, got %v", f.calls)
	}
}

func TestResolve_WithScheme(t *testing.T) {
	f := &stubFetcher{status: map[string]int{"http://acmecorp.com": http.StatusOK}}

	got, _ := New(f, WithScheme("http")).Resolve("Acme Corp")
	if got != "http://acmecorp.com" {
		t.Errorf("Expected http://acmecorp.com, got %q", got)
	}
}
