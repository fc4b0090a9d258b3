package oracle

import "testing"

func TestDecodeFinding(t *testing.T) {
	raw := "```json\n{\"case_note\":\"Checked the market stalls.\",\"suspect\":\"Ivo\",\"confidence\":0.7,\"request_arrest\":true,\"next_steps\":\"Talk to Tessa.\"}\n```"
	var f Finding
	if err := decodeChecked(raw, findingSchema, &f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.Suspect != "Ivo" || f.Confidence != 0.7 || !f.RequestArrest {
		t.Fatalf("finding: %+v", f)
	}
}

func TestDecodeFindingNullSuspect(t *testing.T) {
	raw := `{"case_note":"No leads.","suspect":null,"confidence":0.1,"request_arrest":false}`
	var f Finding
	if err := decodeChecked(raw, findingSchema, &f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.Suspect != "" {
		t.Fatalf("null suspect should decode to empty: %q", f.Suspect)
	}
}

func TestDecodeFindingRejectsMalformed(t *testing.T) {
	cases := []string{
		"I think Ivo did it.",
		`{"case_note":"hm","confidence":"high","request_arrest":false}`,
		`{"case_note":"hm","confidence":1.7,"request_arrest":false}`,
		`{"confidence":0.5,"request_arrest":false}`,
	}
	for _, raw := range cases {
		var f Finding
		if err := decodeChecked(raw, findingSchema, &f); err == nil {
			t.Fatalf("accepted malformed response: %q", raw)
		}
	}
}

func TestDecodeVerdict(t *testing.T) {
	raw := `{"guilty":true,"fine":40,"exile_days":2,"reasoning":"Repeat offense.","judge_statement":"The town will not abide this."}`
	var v Verdict
	if err := decodeChecked(raw, verdictSchema, &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !v.Guilty || v.Fine != 40 || v.ExileDays != 2 {
		t.Fatalf("verdict: %+v", v)
	}
}

func TestStripFences(t *testing.T) {
	got := stripFences("```json\n{\"a\":1}\n```")
	if got != `{"a":1}` {
		t.Fatalf("strip: %q", got)
	}
	got = stripFences(`{"a":1}`)
	if got != `{"a":1}` {
		t.Fatalf("strip plain: %q", got)
	}
}
