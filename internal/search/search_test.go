package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rcliao/learnpath/internal/config"
	"github.com/rcliao/learnpath/internal/model"
)

func TestGoogleClientSearch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"title":"Go Tour","link":"https://go.dev/tour","snippet":"Learn Go","displayLink":"go.dev",
			 "pagemap":{"cse_thumbnail":[{"src":"https://img/t.png"}]}},
			{"title":"Effective Go","link":"https://go.dev/doc/effective_go","snippet":"Tips"}
		]}`))
	}))
	defer srv.Close()

	c := NewGoogleClient("key-1", "cx-1", srv.URL)
	res, err := c.Search(context.Background(), "golang tutorial", Options{Num: 50, SiteSearch: "go.dev", DateRestrict: "m3"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res))
	}
	if res[0].URL != "https://go.dev/tour" || res[0].Thumbnail != "https://img/t.png" || res[0].DisplayLink != "go.dev" {
		t.Errorf("unexpected first result %+v", res[0])
	}
	if res[1].Thumbnail != "" {
		t.Errorf("expected no thumbnail, got %q", res[1].Thumbnail)
	}

	want := map[string]string{
		"key": "key-1", "cx": "cx-1", "q": "golang tutorial",
		"num": "10", "start": "1", "siteSearch": "go.dev", "dateRestrict": "m3",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestGoogleClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	_, err := NewGoogleClient("bad", "cx", srv.URL).Search(context.Background(), "q", Options{})
	if err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("expected API error message, got %v", err)
	}
}

func TestLearningQuery(t *testing.T) {
	tests := []struct {
		typ  model.StepType
		want string
	}{
		{model.StepVideo, "Go tutorial site:youtube.com"},
		{model.StepArticle, "Go tutorial guide beginner"},
		{model.StepProject, "Go project tutorial hands-on"},
		{model.StepExercise, "Go practice exercises"},
		{model.StepQuiz, "Go quiz questions practice"},
		{"podcast", "Go learn podcast"},
	}
	for _, tt := range tests {
		if got := LearningQuery("Go", tt.typ); got != tt.want {
			t.Errorf("LearningQuery(%s) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestNewFromConfig(t *testing.T) {
	if s := NewFromConfig(config.SearchConfig{APIKey: "k"}); s != nil {
		t.Error("expected nil searcher without engine id")
	}
	if s := NewFromConfig(config.SearchConfig{APIKey: "k", EngineID: "e"}); s == nil {
		t.Error("expected configured searcher")
	}
}

func TestPreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head>
			<title>  A Tour of
			Go </title>
			<meta name="description" content="Interactive introduction to Go">
			</head><body>
			<nav><h2>Skip me</h2></nav>
			<main><h1>Welcome</h1><p>text</p><h2>Basics</h2><h3></h3><h3>Flow control</h3></main>
			</body></html>`))
	}))
	defer srv.Close()

	p, err := NewPreviewer(0).Preview(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if p.Title != "A Tour of Go" {
		t.Errorf("title = %q", p.Title)
	}
	if p.Description != "Interactive introduction to Go" {
		t.Errorf("description = %q", p.Description)
	}
	if strings.Join(p.Headings, "|") != "Welcome|Basics|Flow control" {
		t.Errorf("headings = %v", p.Headings)
	}
}

func TestPreviewRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF"))
	}))
	defer srv.Close()

	pv := NewPreviewer(0)
	if _, err := pv.Preview(context.Background(), srv.URL); err == nil {
		t.Error("expected content-type error")
	}
	if _, err := pv.Preview(context.Background(), "file:///etc/passwd"); err == nil {
		t.Error("expected unsupported scheme error")
	}
}
