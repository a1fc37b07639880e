package langcheck

import "testing"

const teluguSample = "తెలంగాణ ప్రభుత్వం కొత్త పథకాన్ని ప్రారంభించింది. రైతులకు పెట్టుబడి సాయం అందనుంది."

func TestMatches_TeluguTextAgainstTeluguCode(t *testing.T) {
	if !Matches("te", teluguSample) {
		t.Fatalf("telugu text should match te")
	}
}

func TestMatches_EnglishTextAgainstTeluguCode(t *testing.T) {
	text := "The state government launched a new scheme today providing investment support to farmers across all districts."
	if Matches("te", text) {
		t.Fatalf("english prose should not match te")
	}
}

func TestMatches_EnglishCodeAlwaysPasses(t *testing.T) {
	if !Matches("en", teluguSample) {
		t.Fatalf("latin-script expectation has no mismatch signal")
	}
	if !Matches("en", "plain english text that is long enough to count") {
		t.Fatalf("english text should match en")
	}
}

func TestMatches_ShortTextPasses(t *testing.T) {
	if !Matches("te", "ok") {
		t.Fatalf("too little signal should pass")
	}
}

func TestMatches_BadCodePasses(t *testing.T) {
	if !Matches("not-a-real-tag-!!", "whatever text content here is long enough") {
		t.Fatalf("unparseable code should pass")
	}
}

func TestCanonical(t *testing.T) {
	got, ok := Canonical(" te ")
	if !ok || got != "te" {
		t.Fatalf("Canonical(te) = %q, %v", got, ok)
	}
	if _, ok := Canonical("!!"); ok {
		t.Fatalf("expected failure for junk code")
	}
}