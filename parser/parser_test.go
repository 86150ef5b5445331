package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-manga-series/models"
)

const seriesPage = `<html><body>
<h1 class="story-title">  Demo
  Title </h1>
<span class="status">Ongoing</span>
<div class="genres">
  <a class="genre" href="/genre/action">Action</a>
  <a class="genre" href="/genre/drama"> Drama </a>
  <a class="genre" href="/genre/action">Action</a>
  <a class="genre" href="/genre/empty">  </a>
</div>
<em id="rate">rate : 4.6 / 5 - 1200 votes</em>
<img class="cover" src=" https://cdn.test/cover.jpg ">
<div class="desc"><b>Bold</b> text</div>
</body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func mustRules(t *testing.T, specs ...models.FieldSpec) *Rules {
	t.Helper()
	rules, err := NewRules(specs)
	if err != nil {
		t.Fatalf("new rules: %v", err)
	}
	return rules
}

func TestParseAllSeriesExample(t *testing.T) {
	doc := mustDoc(t, `<h1 class="story-title">Demo</h1><span class="status">Ongoing</span>`)
	rules := mustRules(t,
		models.FieldSpec{Name: "title", Selector: "h1.story-title"},
		models.FieldSpec{Name: "status", Selector: "span.status"},
	)

	got := ParseAll(doc, rules)
	want := map[string]any{"title": "Demo", "status": "Ongoing"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseAll() = %#v, want %#v", got, want)
	}
}

func TestParseOneTransforms(t *testing.T) {
	rules := mustRules(t,
		models.FieldSpec{Name: "title", Selector: "h1.story-title", Transform: models.TransformText},
		models.FieldSpec{Name: "genres", Selector: "a.genre", Transform: models.TransformList},
		models.FieldSpec{Name: "genre_links", Selector: "a.genre", Transform: models.TransformAttrList, Attr: "href"},
		models.FieldSpec{Name: "rating", Selector: "em#rate", Pattern: `rate\s*:\s*([0-9.]+)`},
		models.FieldSpec{Name: "cover", Selector: "img.cover", Transform: models.TransformAttr, Attr: "src"},
		models.FieldSpec{Name: "desc_html", Selector: "div.desc", Transform: models.TransformHTML},
		models.FieldSpec{Name: "missing", Selector: "div.nothing"},
		models.FieldSpec{Name: "missing_list", Selector: "div.nothing a", Transform: models.TransformList},
		models.FieldSpec{Name: "no_match", Selector: "span.status", Pattern: `^Completed$`},
	)
	doc := mustDoc(t, seriesPage)

	tests := []struct {
		field string
		want  any
	}{
		{"title", "Demo Title"},
		{"genres", []string{"Action", "Drama"}},
		{"genre_links", []string{"/genre/action", "/genre/drama", "/genre/empty"}},
		{"rating", "4.6"},
		{"cover", "https://cdn.test/cover.jpg"},
		{"desc_html", "<b>Bold</b> text"},
		{"missing", ""},
		{"missing_list", []string{}},
		{"no_match", ""},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := ParseOne(doc, rules, tt.field)
			if err != nil {
				t.Fatalf("ParseOne(%q) error: %v", tt.field, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseOne(%q) = %#v, want %#v", tt.field, got, tt.want)
			}
		})
	}
}

func TestParseOneUnknownField(t *testing.T) {
	rules := mustRules(t, models.FieldSpec{Name: "title", Selector: "h1"})
	_, err := ParseOne(mustDoc(t, seriesPage), rules, "nope")
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestParseAllEmptyDocument(t *testing.T) {
	rules := mustRules(t,
		models.FieldSpec{Name: "title", Selector: "h1"},
		models.FieldSpec{Name: "genres", Selector: "a", Transform: models.TransformList},
	)
	got := ParseAll(mustDoc(t, "<html></html>"), rules)
	if got["title"] != "" {
		t.Fatalf("title = %#v, want empty string", got["title"])
	}
	list, ok := got["genres"].([]string)
	if !ok || list == nil || len(list) != 0 {
		t.Fatalf("genres = %#v, want empty non-nil list", got["genres"])
	}
}

func TestNewRulesValidation(t *testing.T) {
	tests := []struct {
		name    string
		specs   []models.FieldSpec
		wantErr string
	}{
		{"no specs", nil, "no field specs"},
		{"empty name", []models.FieldSpec{{Name: " ", Selector: "h1"}}, "name cannot be empty"},
		{"reserved name", []models.FieldSpec{{Name: "mangaId", Selector: "h1"}}, "reserved"},
		{"duplicate", []models.FieldSpec{{Name: "a", Selector: "h1"}, {Name: "a", Selector: "h2"}}, "duplicate"},
		{"empty selector", []models.FieldSpec{{Name: "a"}}, "selector cannot be empty"},
		{"bad selector", []models.FieldSpec{{Name: "a", Selector: "h1[["}}, "invalid selector"},
		{"unknown transform", []models.FieldSpec{{Name: "a", Selector: "h1", Transform: "upper"}}, "unknown transform"},
		{"attr missing", []models.FieldSpec{{Name: "a", Selector: "img", Transform: models.TransformAttr}}, "requires attr"},
		{"bad pattern", []models.FieldSpec{{Name: "a", Selector: "h1", Pattern: "("}}, "invalid pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRules(tt.specs)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRulesAccessors(t *testing.T) {
	rules := mustRules(t,
		models.FieldSpec{Name: "title", Selector: "h1"},
		models.FieldSpec{Name: "genres", Selector: "a", Transform: models.TransformList},
	)
	if !rules.Has("title") || rules.Has("mangaId") {
		t.Fatalf("Has() returned unexpected results")
	}
	if got := rules.Names(); !reflect.DeepEqual(got, []string{"title", "genres"}) {
		t.Fatalf("Names() = %v", got)
	}
	if !rules.IsList("genres") || rules.IsList("title") {
		t.Fatalf("IsList() returned unexpected results")
	}
	if specs := rules.Specs(); specs[0].Transform != models.TransformText {
		t.Fatalf("default transform = %q", specs[0].Transform)
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Demo  ", "Demo"},
		{"a\n\t b", "a b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.input); got != tt.expected {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
