package services

import "strings"

// Submission DTOs. This is the canonical inbound shape, and it is also the
// shape the model is instructed to return, so one normalization pass serves
// both boundaries.

type SubmissionInput struct {
	BaseArticle    BaseArticleInput     `json:"baseArticle"`
	Location       LocationInput        `json:"location"`
	PrintArticle   *PrintArticleInput   `json:"printArticle"`
	WebArticle     *WebArticleInput     `json:"webArticle"`
	ShortNews      *ShortNewsInput      `json:"shortNews"`
	Media          *MediaInput          `json:"media"`
	PublishControl *PublishControlInput `json:"publishControl"`

	// Explicit scope, uuid or slug/hostname. Required for SUPER_ADMIN
	// callers, ignored for everyone else.
	TenantID string `json:"tenantId,omitempty"`
	DomainID string `json:"domainId,omitempty"`

	// Legacy snake_case aliases. NormalizeSubmission folds these onto the
	// canonical fields; nothing past the boundary reads them.
	BaseArticleAlt  *BaseArticleInput  `json:"base_article,omitempty"`
	PrintArticleAlt *PrintArticleInput `json:"print_article,omitempty"`
	WebArticleAlt   *WebArticleInput   `json:"web_article,omitempty"`
	ShortNewsAlt    *ShortNewsInput    `json:"short_mobile_article,omitempty"`
	StatusAlt       *statusAltInput    `json:"status,omitempty"`
	TenantIDAlt     string             `json:"tenant_id,omitempty"`
	DomainIDAlt     string             `json:"domain_id,omitempty"`
}

type BaseArticleInput struct {
	LanguageCode string   `json:"languageCode"`
	Category     string   `json:"category"`
	Categories   []string `json:"categories"`

	LanguageCodeAlt string `json:"language_code,omitempty"`
}

type LocationInput struct {
	Resolved LocationNamesInput `json:"resolved"`
	Dateline string             `json:"dateline"`
}

type LocationNamesInput struct {
	State    string `json:"state"`
	District string `json:"district"`
	Mandal   string `json:"mandal"`
	Village  string `json:"village"`
}

type PrintArticleInput struct {
	Headline   string   `json:"headline"`
	Subtitle   string   `json:"subtitle"`
	Body       []string `json:"body"`
	Highlights []string `json:"highlights"`
}

type WebSectionInput struct {
	Subhead    string   `json:"subhead"`
	Paragraphs []string `json:"paragraphs"`
}

type SEOInput struct {
	Slug            string   `json:"slug"`
	MetaTitle       string   `json:"metaTitle"`
	MetaDescription string   `json:"metaDescription"`
	Keywords        []string `json:"keywords"`

	MetaTitleAlt       string `json:"meta_title,omitempty"`
	MetaDescriptionAlt string `json:"meta_description,omitempty"`
}

type WebArticleInput struct {
	Headline string            `json:"headline"`
	Lead     string            `json:"lead"`
	Sections []WebSectionInput `json:"sections"`
	SEO      *SEOInput         `json:"seo"`
}

type ShortNewsInput struct {
	H1      string `json:"h1"`
	H2      string `json:"h2"`
	Content string `json:"content"`
}

type ImageInput struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
	Alt     string `json:"alt"`
}

type MediaInput struct {
	Images []ImageInput `json:"images"`
}

type PublishControlInput struct {
	PublishReady *bool `json:"publishReady"`

	PublishReadyAlt *bool `json:"publish_ready,omitempty"`
}

type statusAltInput struct {
	PublishReady *bool `json:"publish_ready"`
}

// NormalizeSubmission maps the alternate snake_case payload onto the
// canonical shape, field for field. Canonical values always win; aliases
// fill gaps only. Safe to call twice.
func NormalizeSubmission(in *SubmissionInput) *SubmissionInput {
	if in == nil {
		return nil
	}

	if in.BaseArticleAlt != nil {
		foldBaseArticle(&in.BaseArticle, in.BaseArticleAlt)
		in.BaseArticleAlt = nil
	}
	if in.BaseArticle.LanguageCode == "" {
		in.BaseArticle.LanguageCode = in.BaseArticle.LanguageCodeAlt
	}
	in.BaseArticle.LanguageCodeAlt = ""

	if in.PrintArticle == nil {
		in.PrintArticle = in.PrintArticleAlt
	}
	in.PrintArticleAlt = nil

	if in.WebArticle == nil {
		in.WebArticle = in.WebArticleAlt
	}
	in.WebArticleAlt = nil
	if in.WebArticle != nil && in.WebArticle.SEO != nil {
		foldSEO(in.WebArticle.SEO)
	}

	if in.ShortNews == nil {
		in.ShortNews = in.ShortNewsAlt
	}
	in.ShortNewsAlt = nil

	if in.PublishControl == nil && in.StatusAlt != nil && in.StatusAlt.PublishReady != nil {
		in.PublishControl = &PublishControlInput{PublishReady: in.StatusAlt.PublishReady}
	}
	in.StatusAlt = nil
	if in.PublishControl != nil {
		if in.PublishControl.PublishReady == nil {
			in.PublishControl.PublishReady = in.PublishControl.PublishReadyAlt
		}
		in.PublishControl.PublishReadyAlt = nil
	}

	if in.TenantID == "" {
		in.TenantID = in.TenantIDAlt
	}
	if in.DomainID == "" {
		in.DomainID = in.DomainIDAlt
	}
	in.TenantIDAlt, in.DomainIDAlt = "", ""

	return in
}

func foldBaseArticle(dst *BaseArticleInput, alt *BaseArticleInput) {
	if dst.LanguageCode == "" {
		dst.LanguageCode = alt.LanguageCode
	}
	if dst.LanguageCode == "" {
		dst.LanguageCode = alt.LanguageCodeAlt
	}
	if dst.Category == "" {
		dst.Category = alt.Category
	}
	if len(dst.Categories) == 0 {
		dst.Categories = alt.Categories
	}
}

func foldSEO(seo *SEOInput) {
	if seo.MetaTitle == "" {
		seo.MetaTitle = seo.MetaTitleAlt
	}
	if seo.MetaDescription == "" {
		seo.MetaDescription = seo.MetaDescriptionAlt
	}
	seo.MetaTitleAlt = ""
	seo.MetaDescriptionAlt = ""
}

// CategoryList flattens the single-category and list forms into one slice,
// dropping blanks and duplicates while preserving order.
func (b BaseArticleInput) CategoryList() []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(b.Categories)+1)
	add := func(raw string) {
		v := strings.TrimSpace(raw)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}
	add(b.Category)
	for _, c := range b.Categories {
		add(c)
	}
	return out
}

// HasPrint reports whether the payload carries usable print content.
func (s *SubmissionInput) HasPrint() bool {
	return s != nil && s.PrintArticle != nil && len(nonBlank(s.PrintArticle.Body)) > 0
}

// HasWeb reports whether the payload carries usable web content.
func (s *SubmissionInput) HasWeb() bool {
	if s == nil || s.WebArticle == nil {
		return false
	}
	if strings.TrimSpace(s.WebArticle.Lead) != "" {
		return true
	}
	for _, sec := range s.WebArticle.Sections {
		if len(nonBlank(sec.Paragraphs)) > 0 {
			return true
		}
	}
	return false
}

// HasShort reports whether the payload carries usable short-news content.
func (s *SubmissionInput) HasShort() bool {
	return s != nil && s.ShortNews != nil && strings.TrimSpace(s.ShortNews.Content) != ""
}

func (s *SubmissionInput) Images() []ImageInput {
	if s == nil || s.Media == nil {
		return nil
	}
	return s.Media.Images
}

func (s *SubmissionInput) PublishReady() bool {
	if s == nil || s.PublishControl == nil || s.PublishControl.PublishReady == nil {
		return false
	}
	return *s.PublishControl.PublishReady
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
