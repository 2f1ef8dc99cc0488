package website

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestHTTPFetcherExtractsVisibleText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected user agent header")
		}
		fmt.Fprint(w, `<html><head><style>body{color:red}</style></head><body>
<h1>Joe's   Diner</h1>
<script>var x = 1;</script>
<p>Open daily</p>
</body></html>`)
	}))
	defer server.Close()

	page, err := NewHTTPFetcher(server.Client()).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", page.StatusCode)
	}
	if page.Text != "Joe's Diner Open daily" {
		t.Fatalf("unexpected visible text: %q", page.Text)
	}
	if !strings.Contains(page.HTML, "<script>") {
		t.Fatalf("expected raw markup preserved")
	}
}

func TestHTTPFetcherReturnsErrorStatusWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	page, err := NewHTTPFetcher(server.Client()).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.StatusCode != http.StatusNotFound || page.HTML != "" {
		t.Fatalf("unexpected page: %#v", page)
	}
}

func TestHTTPFetcherPropagatesTransportError(t *testing.T) {
	client := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("no such host")
	})

	_, err := NewHTTPFetcher(client).Fetch(context.Background(), "https://nowhere.test")
	if err == nil || !strings.Contains(err.Error(), "no such host") {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestClassifierWithHTTPFetcher404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	verdict := NewClassifier(NewHTTPFetcher(server.Client())).Classify(context.Background(), server.URL)
	if verdict.Status != "broken" || verdict.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected broken 404, got %#v", verdict)
	}
}
