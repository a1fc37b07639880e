package services

import (
	"encoding/json"
	"testing"
)

func decodeSubmission(t *testing.T, raw string) *SubmissionInput {
	t.Helper()
	var in SubmissionInput
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return NormalizeSubmission(&in)
}

func TestNormalizeSubmission_SnakeCasePayload(t *testing.T) {
	in := decodeSubmission(t, `{
		"base_article": {"language_code": "te", "category": "politics"},
		"print_article": {"headline": "Print head", "body": ["p1", "p2"], "highlights": ["h1"]},
		"web_article": {"headline": "Web head", "lead": "lead para", "seo": {"slug": "web-head", "meta_title": "MT", "meta_description": "MD"}},
		"short_mobile_article": {"h1": "Short", "content": "short body"},
		"status": {"publish_ready": true}
	}`)

	if in.BaseArticle.LanguageCode != "te" {
		t.Fatalf("languageCode = %q", in.BaseArticle.LanguageCode)
	}
	if got := in.BaseArticle.CategoryList(); len(got) != 1 || got[0] != "politics" {
		t.Fatalf("categories = %v", got)
	}
	if in.PrintArticle == nil || in.PrintArticle.Headline != "Print head" || len(in.PrintArticle.Body) != 2 {
		t.Fatalf("printArticle = %+v", in.PrintArticle)
	}
	if in.WebArticle == nil || in.WebArticle.SEO == nil {
		t.Fatalf("webArticle = %+v", in.WebArticle)
	}
	if in.WebArticle.SEO.MetaTitle != "MT" || in.WebArticle.SEO.MetaDescription != "MD" {
		t.Fatalf("seo = %+v", in.WebArticle.SEO)
	}
	if in.ShortNews == nil || in.ShortNews.Content != "short body" {
		t.Fatalf("shortNews = %+v", in.ShortNews)
	}
	if !in.PublishReady() {
		t.Fatal("publishReady not folded from status.publish_ready")
	}
	if in.PrintArticleAlt != nil || in.WebArticleAlt != nil || in.ShortNewsAlt != nil || in.StatusAlt != nil {
		t.Fatal("alias fields not cleared")
	}
}

func TestNormalizeSubmission_CanonicalWinsOverAlias(t *testing.T) {
	in := decodeSubmission(t, `{
		"baseArticle": {"languageCode": "en"},
		"printArticle": {"headline": "Canonical", "body": ["a"]},
		"print_article": {"headline": "Alias", "body": ["b"]},
		"webArticle": {"headline": "W", "seo": {"metaTitle": "Canonical MT", "meta_title": "Alias MT"}},
		"publishControl": {"publishReady": false},
		"status": {"publish_ready": true}
	}`)

	if in.PrintArticle.Headline != "Canonical" {
		t.Fatalf("headline = %q, canonical block should win", in.PrintArticle.Headline)
	}
	if in.WebArticle.SEO.MetaTitle != "Canonical MT" {
		t.Fatalf("metaTitle = %q", in.WebArticle.SEO.MetaTitle)
	}
	if in.PublishReady() {
		t.Fatal("explicit publishControl should win over status alias")
	}
}

func TestNormalizeSubmission_IdempotentAndNilSafe(t *testing.T) {
	if NormalizeSubmission(nil) != nil {
		t.Fatal("nil input should stay nil")
	}

	in := decodeSubmission(t, `{"print_article": {"headline": "H", "body": ["x"]}}`)
	again := NormalizeSubmission(in)
	if again.PrintArticle == nil || again.PrintArticle.Headline != "H" {
		t.Fatalf("second pass mangled payload: %+v", again.PrintArticle)
	}
}

func TestCategoryList_DedupAndOrder(t *testing.T) {
	b := BaseArticleInput{Category: "politics", Categories: []string{"politics", " crime ", "", "sports"}}
	got := b.CategoryList()
	want := []string{"politics", "crime", "sports"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestPayloadPresenceHelpers(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		print bool
		web   bool
		short bool
	}{
		{
			name:  "print_only",
			raw:   `{"printArticle": {"headline": "H", "body": ["p"]}}`,
			print: true,
		},
		{
			name: "blank_body_does_not_count",
			raw:  `{"printArticle": {"headline": "H", "body": ["  "]}}`,
		},
		{
			name: "web_via_lead",
			raw:  `{"webArticle": {"headline": "W", "lead": "l"}}`,
			web:  true,
		},
		{
			name: "web_via_sections",
			raw:  `{"webArticle": {"headline": "W", "sections": [{"paragraphs": ["p"]}]}}`,
			web:  true,
		},
		{
			name:  "short",
			raw:   `{"shortNews": {"content": "c"}}`,
			short: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := decodeSubmission(t, tc.raw)
			if got := in.HasPrint(); got != tc.print {
				t.Fatalf("HasPrint = %v, want %v", got, tc.print)
			}
			if got := in.HasWeb(); got != tc.web {
				t.Fatalf("HasWeb = %v, want %v", got, tc.web)
			}
			if got := in.HasShort(); got != tc.short {
				t.Fatalf("HasShort = %v, want %v", got, tc.short)
			}
		})
	}
}
