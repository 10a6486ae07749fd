// Package intent turns a caller utterance plus recent history into either a
// structured action request or a direct spoken reply, using an LLM with
// function calling underneath.
package intent

import (
	"context"
	"strings"

	"github.com/WilliamZhang9/Call2Map/session"
)

// Kind names a dispatchable action.
type Kind string

const (
	KindSearchPlaces    Kind = "search_places"
	KindReservationInfo Kind = "get_reservation_info"
	KindSendMessage     Kind = "send_message"
)

// ActionRequest is the extractor's structured output for one action.
// Argument completeness is re-validated by the orchestrator; the extractor
// only reports what the model claimed.
type ActionRequest struct {
	Kind Kind
	Args map[string]string
}

// Arg returns a cleaned argument value. Models occasionally emit the
// literal strings "None" or "null" for missing values; those count as
// absent.
func (a *ActionRequest) Arg(name string) string {
	v := strings.TrimSpace(a.Args[name])
	switch strings.ToLower(v) {
	case "none", "null":
		return ""
	}
	return v
}

// Result is one extraction outcome: either Action is set, or Reply carries
// the model's direct response text.
type Result struct {
	Reply  string
	Action *ActionRequest
}

// Extractor is the understanding contract. Implementations must degrade
// malformed structured output to a direct reply rather than failing the
// turn.
type Extractor interface {
	Extract(ctx context.Context, utterance string, history []session.Turn, knownLocation string) (Result, error)
}

func knownKind(k Kind) bool {
	switch k {
	case KindSearchPlaces, KindReservationInfo, KindSendMessage:
		return true
	}
	return false
}
