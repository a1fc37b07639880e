package jsonx

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestExtract_FencedBlockWithProse(t *testing.T) {
	in := "Here is the result:\n```json\n{\"a\":1,\"b\":{\"c\":2}}\n```\nThanks!"
	raw, err := Extract(in)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	var got struct {
		A int `json:"a"`
		B struct {
			C int `json:"c"`
		} `json:"b"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("extracted text does not decode: %v", err)
	}
	if got.A != 1 || got.B.C != 2 {
		t.Fatalf("unexpected decode result: %+v", got)
	}
}

func TestExtract_NoJSONFails(t *testing.T) {
	_, err := Extract("no json here")
	if !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
}

func TestExtract_BraceInsideStringDoesNotTruncate(t *testing.T) {
	in := `model said: {"text":"closing } brace inside","n":7} trailing {oops}`
	raw, err := Extract(in)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	var got struct {
		Text string `json:"text"`
		N    int    `json:"n"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("extracted text does not decode: %v", err)
	}
	if got.Text != "closing } brace inside" || got.N != 7 {
		t.Fatalf("object truncated early: %+v", got)
	}
}

func TestExtract_EscapedQuoteInsideString(t *testing.T) {
	in := `prefix {"quote":"she said \"hi\" and left}","ok":true} suffix`
	raw, err := Extract(in)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("extracted text does not decode: %v", err)
	}
	if got["ok"] != true {
		t.Fatalf("wrong region extracted: %v", got)
	}
}

func TestExtract_PrefersObjectOverArray(t *testing.T) {
	in := `ids: [1,2,3,4,5,6,7,8,9,10] payload: {"x":1}`
	raw, err := Extract(in)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if raw[0] != '{' {
		t.Fatalf("expected object region, got %s", raw)
	}
}

func TestExtract_LargestObjectWins(t *testing.T) {
	in := `{"small":1} and then {"bigger":{"nested":[1,2,3]},"more":"text"}`
	raw, err := Extract(in)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("extracted text does not decode: %v", err)
	}
	if _, ok := got["bigger"]; !ok {
		t.Fatalf("expected the larger object, got %v", got)
	}
}

func TestExtract_BareFenceWithoutTag(t *testing.T) {
	in := "```\n[{\"k\":\"v\"}]\n```"
	raw, err := Extract(in)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if raw[0] != '[' {
		t.Fatalf("expected array, got %s", raw)
	}
}

func TestExtract_UnbalancedBracesFail(t *testing.T) {
	if _, err := Extract(`{"never":"closes"`); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON for unbalanced input, got %v", err)
	}
}

func TestUnmarshal_DecodesIntoTarget(t *testing.T) {
	var got struct {
		Name string `json:"name"`
	}
	if err := Unmarshal("noise {\"name\":\"desk\"} noise", &got); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if got.Name != "desk" {
		t.Fatalf("got %q", got.Name)
	}
}
