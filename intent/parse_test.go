package intent

import "testing"

func TestParseModelOutputAction(t *testing.T) {
	content := `{"action": "search_places", "arguments": {"query": "sushi restaurants", "location": "McGill University"}}`
	result := parseModelOutput(content)

	if result.Action == nil {
		t.Fatal("expected an action")
	}
	if result.Action.Kind != KindSearchPlaces {
		t.Errorf("kind = %q, want search_places", result.Action.Kind)
	}
	if got := result.Action.Arg("query"); got != "sushi restaurants" {
		t.Errorf("query = %q", got)
	}
	if got := result.Action.Arg("location"); got != "McGill University" {
		t.Errorf("location = %q", got)
	}
}

func TestParseModelOutputReply(t *testing.T) {
	result := parseModelOutput(`{"reply": "Montreal is lovely in June."}`)
	if result.Action != nil {
		t.Fatal("expected no action")
	}
	if result.Reply != "Montreal is lovely in June." {
		t.Errorf("reply = %q", result.Reply)
	}
}

func TestParseModelOutputCodeFence(t *testing.T) {
	content := "```json\n{\"action\": \"send_message\", \"arguments\": {\"message\": \"hi\"}}\n```"
	result := parseModelOutput(content)
	if result.Action == nil || result.Action.Kind != KindSendMessage {
		t.Fatalf("code-fenced action not parsed: %+v", result)
	}
}

func TestParseModelOutputMalformed(t *testing.T) {
	content := "Sure, I can look that up for you!"
	result := parseModelOutput(content)
	if result.Action != nil {
		t.Fatal("plain prose must not produce an action")
	}
	if result.Reply != content {
		t.Errorf("reply should be the raw content, got %q", result.Reply)
	}
}

func TestParseModelOutputUnknownAction(t *testing.T) {
	content := `{"action": "order_pizza", "arguments": {}}`
	result := parseModelOutput(content)
	if result.Action != nil {
		t.Fatal("unknown action must degrade to a direct reply")
	}
	if result.Reply != content {
		t.Errorf("reply = %q", result.Reply)
	}
}

func TestParseModelOutputActionWithoutArguments(t *testing.T) {
	result := parseModelOutput(`{"action": "search_places"}`)
	if result.Action == nil {
		t.Fatal("expected an action")
	}
	if result.Action.Args == nil {
		t.Fatal("args map must never be nil")
	}
	if got := result.Action.Arg("query"); got != "" {
		t.Errorf("missing arg should read empty, got %q", got)
	}
}

func TestArgTreatsNoneAsAbsent(t *testing.T) {
	a := &ActionRequest{Kind: KindSearchPlaces, Args: map[string]string{
		"query":    "None",
		"location": "null",
		"extra":    "  Plateau  ",
	}}
	if got := a.Arg("query"); got != "" {
		t.Errorf("'None' should read empty, got %q", got)
	}
	if got := a.Arg("location"); got != "" {
		t.Errorf("'null' should read empty, got %q", got)
	}
	if got := a.Arg("extra"); got != "Plateau" {
		t.Errorf("values should be trimmed, got %q", got)
	}
}

func TestArgString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"sushi", "sushi"},
		{float64(5), "5"},
		{4.5, "4.5"},
		{true, "true"},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := argString(tc.in); got != tc.want {
			t.Errorf("argString(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
