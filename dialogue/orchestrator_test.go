package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/WilliamZhang9/Call2Map/intent"
	"github.com/WilliamZhang9/Call2Map/places"
	"github.com/WilliamZhang9/Call2Map/session"
)

type extractStep struct {
	result intent.Result
	err    error
}

type fakeExtractor struct {
	steps        []extractStep
	calls        int
	gotLocations []string
}

func (f *fakeExtractor) Extract(ctx context.Context, utterance string, history []session.Turn, knownLocation string) (intent.Result, error) {
	f.gotLocations = append(f.gotLocations, knownLocation)
	step := f.steps[f.calls%len(f.steps)]
	f.calls++
	return step.result, step.err
}

type fakeDirectory struct {
	searchResults    []places.Place
	searchErr        error
	reservation      places.ReservationInfo
	reservationErr   error
	searchCalls      int
	reservationCalls int
	gotQueries       []string
	gotLocations     []string
}

func (f *fakeDirectory) Search(ctx context.Context, query, location string) ([]places.Place, error) {
	f.searchCalls++
	f.gotQueries = append(f.gotQueries, query)
	f.gotLocations = append(f.gotLocations, location)
	return f.searchResults, f.searchErr
}

func (f *fakeDirectory) ReservationInfo(ctx context.Context, placeID string) (places.ReservationInfo, error) {
	f.reservationCalls++
	return f.reservation, f.reservationErr
}

type fakeNotifier struct {
	fail   bool
	sentTo []string
	bodies []string
}

func (f *fakeNotifier) Send(ctx context.Context, to, body string) error {
	if f.fail {
		return errors.New("sms gateway down")
	}
	f.sentTo = append(f.sentTo, to)
	f.bodies = append(f.bodies, body)
	return nil
}

func rating(v float64) *float64 { return &v }

func sushiPlaces() []places.Place {
	return []places.Place{
		{ID: "p1", Name: "Kazu", Address: "1862 Sainte-Catherine St", Rating: rating(4.5)},
		{ID: "p2", Name: "Jun I", Address: "156 Laurier Ave", Rating: rating(4.5)},
	}
}

func searchAction(query, location string) intent.Result {
	return intent.Result{Action: &intent.ActionRequest{
		Kind: intent.KindSearchPlaces,
		Args: map[string]string{"query": query, "location": location},
	}}
}

func newTestOrchestrator(ext intent.Extractor, dir places.Directory, not *fakeNotifier) (*Orchestrator, *session.Store) {
	store := session.NewMemoryStore(100, 30*time.Minute)
	return New(store, ext, dir, not, 10, 2*time.Second), store
}

func TestSearchUpdatesSessionAndNotifies(t *testing.T) {
	ext := &fakeExtractor{steps: []extractStep{{result: searchAction("sushi restaurants", "McGill University")}}}
	dir := &fakeDirectory{searchResults: sushiPlaces()}
	not := &fakeNotifier{}
	o, store := newTestOrchestrator(ext, dir, not)

	reply, keep := o.HandleTurn(context.Background(), "CA123", "+15145550100", "Find sushi restaurants near McGill University")

	if !keep {
		t.Fatal("expected call to continue")
	}
	if !strings.Contains(reply, "Kazu") {
		t.Errorf("reply should mention top result, got %q", reply)
	}
	if dir.searchCalls != 1 {
		t.Errorf("expected exactly one search dispatch, got %d", dir.searchCalls)
	}

	sess, ok := store.Get("CA123")
	if !ok {
		t.Fatal("session not created")
	}
	if got := sess.KnownLocation(); got != "McGill University" {
		t.Errorf("known location = %q, want McGill University", got)
	}
	fp := sess.FocalPlace()
	if fp == nil || fp.Name != "Kazu" {
		t.Errorf("focal place = %+v, want Kazu", fp)
	}

	// Two results means exactly one SMS with the full list
	if len(not.sentTo) != 1 {
		t.Fatalf("expected 1 SMS, got %d", len(not.sentTo))
	}
	if not.sentTo[0] != "+15145550100" {
		t.Errorf("SMS sent to %q, want caller number", not.sentTo[0])
	}
	if !strings.Contains(not.bodies[0], "Jun I") {
		t.Errorf("SMS should list all results, got %q", not.bodies[0])
	}
	if !strings.Contains(reply, "sent the details") {
		t.Errorf("successful delivery should be claimed, got %q", reply)
	}
}

func TestSearchSingleResultSkipsSMS(t *testing.T) {
	ext := &fakeExtractor{steps: []extractStep{{result: searchAction("ramen", "Plateau")}}}
	dir := &fakeDirectory{searchResults: sushiPlaces()[:1]}
	not := &fakeNotifier{}
	o, _ := newTestOrchestrator(ext, dir, not)

	reply, _ := o.HandleTurn(context.Background(), "CA1", "+1555", "ramen nearby")

	if len(not.sentTo) != 0 {
		t.Errorf("single result must not trigger SMS, got %d sends", len(not.sentTo))
	}
	if !strings.Contains(reply, "Kazu") {
		t.Errorf("reply should still name the result, got %q", reply)
	}
}

func TestSearchNoResults(t *testing.T) {
	ext := &fakeExtractor{steps: []extractStep{{result: searchAction("vegan tacos", "Nunavut")}}}
	dir := &fakeDirectory{searchResults: []places.Place{}}
	not := &fakeNotifier{}
	o, store := newTestOrchestrator(ext, dir, not)

	reply, keep := o.HandleTurn(context.Background(), "CA2", "+1555", "any vegan tacos around")

	if !keep {
		t.Fatal("expected call to continue")
	}
	if !strings.Contains(reply, "couldn't find") {
		t.Errorf("reply = %q, want a couldn't-find message", reply)
	}
	if strings.Contains(reply, "Kazu") {
		t.Errorf("reply must not contain place names, got %q", reply)
	}
	if len(not.sentTo) != 0 {
		t.Errorf("no SMS expected on empty result, got %d", len(not.sentTo))
	}
	sess, _ := store.Get("CA2")
	if sess.KnownLocation() != "" {
		t.Errorf("known location should stay unset on empty result, got %q", sess.KnownLocation())
	}
}

func TestSearchMissingArgumentsAsksClarification(t *testing.T) {
	ext := &fakeExtractor{steps: []extractStep{{result: searchAction("sushi", "")}}}
	dir := &fakeDirectory{searchResults: sushiPlaces()}
	not := &fakeNotifier{}
	o, _ := newTestOrchestrator(ext, dir, not)

	reply, keep := o.HandleTurn(context.Background(), "CA3", "+1555", "find sushi")

	if !keep {
		t.Fatal("expected call to continue")
	}
	if dir.searchCalls != 0 {
		t.Errorf("incomplete action must not dispatch, got %d search calls", dir.searchCalls)
	}
	if !strings.Contains(reply, "location") {
		t.Errorf("reply should ask for the missing argument, got %q", reply)
	}
}

func TestSearchTreatsLiteralNoneAsMissing(t *testing.T) {
	ext := &fakeExtractor{steps: []extractStep{{result: searchAction("None", "None")}}}
	dir := &fakeDirectory{searchResults: sushiPlaces()}
	not := &fakeNotifier{}
	o, _ := newTestOrchestrator(ext, dir, not)

	o.HandleTurn(context.Background(), "CA3b", "+1555", "find something")

	if dir.searchCalls != 0 {
		t.Errorf("'None' arguments must not dispatch, got %d search calls", dir.searchCalls)
	}
}

func TestNotifierFailureDoesNotClaimDelivery(t *testing.T) {
	ext := &fakeExtractor{steps: []extractStep{{result: searchAction("sushi", "McGill University")}}}
	dir := &fakeDirectory{searchResults: sushiPlaces()}
	not := &fakeNotifier{fail: true}
	o, _ := newTestOrchestrator(ext, dir, not)

	reply, keep := o.HandleTurn(context.Background(), "CA4", "+1555", "sushi please")

	if !keep {
		t.Fatal("SMS failure must not end the call")
	}
	if !strings.Contains(reply, "Kazu") {
		t.Errorf("primary reply content must survive SMS failure, got %q", reply)
	}
	if strings.Contains(reply, "sent the details") || strings.Contains(reply, "texted") {
		t.Errorf("reply must not claim delivery after a failed send, got %q", reply)
	}
}

func TestReservationOnlinePlatform(t *testing.T) {
	action := intent.Result{Action: &intent.ActionRequest{
		Kind: intent.KindReservationInfo,
		Args: map[string]string{"place_name": "Kazu", "location": "Montreal"},
	}}
	ext := &fakeExtractor{steps: []extractStep{{result: action}}}
	dir := &fakeDirectory{
		searchResults: sushiPlaces()[:1],
		reservation: places.ReservationInfo{
			PlaceID:    "p1",
			Method:     places.MethodOnline,
			Platform:   "OpenTable",
			BookingURL: "https://www.opentable.com/r/kazu",
			MapsURL:    "https://maps.google.com/?cid=1",
		},
	}
	not := &fakeNotifier{}
	o, _ := newTestOrchestrator(ext, dir, not)

	reply, _ := o.HandleTurn(context.Background(), "CA5", "+1555", "can I book a table at Kazu")

	if !strings.Contains(reply, "OpenTable") {
		t.Errorf("reply should name the platform, got %q", reply)
	}
	if len(not.bodies) != 1 || !strings.Contains(not.bodies[0], "opentable.com") {
		t.Fatalf("SMS body should carry the booking link, got %v", not.bodies)
	}
	if dir.reservationCalls != 1 {
		t.Errorf("expected one reservation lookup, got %d", dir.reservationCalls)
	}
}

func TestReservationPhoneFallback(t *testing.T) {
	action := intent.Result{Action: &intent.ActionRequest{
		Kind: intent.KindReservationInfo,
		Args: map[string]string{"place_name": "Kazu", "location": "Montreal"},
	}}
	ext := &fakeExtractor{steps: []extractStep{{result: action}}}
	dir := &fakeDirectory{
		searchResults: sushiPlaces()[:1],
		reservation: places.ReservationInfo{
			PlaceID: "p1",
			Method:  places.MethodPhone,
			Phone:   "(514) 555-0199",
		},
	}
	not := &fakeNotifier{}
	o, _ := newTestOrchestrator(ext, dir, not)

	reply, _ := o.HandleTurn(context.Background(), "CA6", "+1555", "how do I reserve at Kazu")

	if !strings.Contains(reply, "(514) 555-0199") {
		t.Errorf("reply should include the phone number, got %q", reply)
	}
	if len(not.bodies) != 1 || !strings.Contains(not.bodies[0], "(514) 555-0199") {
		t.Fatalf("SMS should carry the phone number, got %v", not.bodies)
	}
}

func TestReservationWithoutLocationAsks(t *testing.T) {
	action := intent.Result{Action: &intent.ActionRequest{
		Kind: intent.KindReservationInfo,
		Args: map[string]string{"place_name": "Kazu"},
	}}
	ext := &fakeExtractor{steps: []extractStep{{result: action}}}
	dir := &fakeDirectory{searchResults: sushiPlaces()}
	not := &fakeNotifier{}
	o, _ := newTestOrchestrator(ext, dir, not)

	reply, keep := o.HandleTurn(context.Background(), "CA7", "+1555", "book me a table at Kazu")

	if !keep {
		t.Fatal("expected call to continue")
	}
	if dir.searchCalls != 0 {
		t.Errorf("unresolvable location must not dispatch, got %d search calls", dir.searchCalls)
	}
	if !strings.Contains(reply, "Kazu") {
		t.Errorf("clarifying question should name the place, got %q", reply)
	}
}

func TestReservationReusesKnownLocation(t *testing.T) {
	action := intent.Result{Action: &intent.ActionRequest{
		Kind: intent.KindReservationInfo,
		Args: map[string]string{"place_name": "Kazu"},
	}}
	ext := &fakeExtractor{steps: []extractStep{{result: action}}}
	dir := &fakeDirectory{
		searchResults: sushiPlaces()[:1],
		reservation:   places.ReservationInfo{PlaceID: "p1", Method: places.MethodUnknown},
	}
	not := &fakeNotifier{}
	o, store := newTestOrchestrator(ext, dir, not)

	sess, _ := store.GetOrCreate(context.Background(), "CA8", "+1555")
	sess.SetKnownLocation("McGill University")

	o.HandleTurn(context.Background(), "CA8", "+1555", "how do I book at Kazu")

	if dir.searchCalls != 1 {
		t.Fatalf("expected a dispatch using the session location, got %d calls", dir.searchCalls)
	}
	if dir.gotLocations[0] != "McGill University" {
		t.Errorf("search location = %q, want session's known location", dir.gotLocations[0])
	}
}

func TestSendMessage(t *testing.T) {
	action := intent.Result{Action: &intent.ActionRequest{
		Kind: intent.KindSendMessage,
		Args: map[string]string{"message": "Kazu, 1862 Sainte-Catherine St"},
	}}
	ext := &fakeExtractor{steps: []extractStep{{result: action}}}
	not := &fakeNotifier{}
	o, _ := newTestOrchestrator(ext, &fakeDirectory{}, not)

	reply, _ := o.HandleTurn(context.Background(), "CA9", "+1555", "text me that address")

	if !strings.Contains(reply, "sent") {
		t.Errorf("reply should state success plainly, got %q", reply)
	}
	if len(not.bodies) != 1 || not.bodies[0] != "Kazu, 1862 Sainte-Catherine St" {
		t.Fatalf("SMS body mismatch: %v", not.bodies)
	}
}

func TestSendMessageFailureStated(t *testing.T) {
	action := intent.Result{Action: &intent.ActionRequest{
		Kind: intent.KindSendMessage,
		Args: map[string]string{"message": "hello"},
	}}
	ext := &fakeExtractor{steps: []extractStep{{result: action}}}
	not := &fakeNotifier{fail: true}
	o, _ := newTestOrchestrator(ext, &fakeDirectory{}, not)

	reply, keep := o.HandleTurn(context.Background(), "CA10", "+1555", "text me")

	if !keep {
		t.Fatal("send failure must not end the call")
	}
	if !strings.Contains(reply, "trouble") {
		t.Errorf("reply should state the failure plainly, got %q", reply)
	}
}

func TestExtractorFailureApologizes(t *testing.T) {
	ext := &fakeExtractor{steps: []extractStep{{err: context.DeadlineExceeded}}}
	o, store := newTestOrchestrator(ext, &fakeDirectory{}, &fakeNotifier{})

	reply, keep := o.HandleTurn(context.Background(), "CA11", "+1555", "find me pizza")

	if reply == "" {
		t.Fatal("apology must be non-empty")
	}
	if !keep {
		t.Error("extractor failure must keep the call alive")
	}

	sess, _ := store.Get("CA11")
	turns := sess.Turns()
	if len(turns) != 2 {
		t.Fatalf("turn history should record both entries, got %d", len(turns))
	}
	if turns[0].Role != session.RoleUser || turns[0].Text != "find me pizza" {
		t.Errorf("first turn = %+v", turns[0])
	}
	if turns[1].Role != session.RoleAssistant || turns[1].Text != reply {
		t.Errorf("second turn = %+v", turns[1])
	}
}

func TestEmptyUtteranceReprompts(t *testing.T) {
	ext := &fakeExtractor{steps: []extractStep{{result: intent.Result{Reply: "hi"}}}}
	o, store := newTestOrchestrator(ext, &fakeDirectory{}, &fakeNotifier{})

	sess, _ := store.GetOrCreate(context.Background(), "CA12", "+1555")

	reply, keep := o.HandleTurn(context.Background(), "CA12", "+1555", "   ")

	if !keep {
		t.Error("blank utterance must keep listening")
	}
	if reply == "" {
		t.Error("expected a re-prompt reply")
	}
	if ext.calls != 0 {
		t.Errorf("blank utterance must not reach the extractor, got %d calls", ext.calls)
	}
	if len(sess.Turns()) != 0 {
		t.Errorf("blank utterance must not touch history, got %d turns", len(sess.Turns()))
	}
}

func TestGoodbyeEndsCall(t *testing.T) {
	ext := &fakeExtractor{steps: []extractStep{{result: intent.Result{Reply: "hi"}}}}
	o, store := newTestOrchestrator(ext, &fakeDirectory{}, &fakeNotifier{})

	reply, keep := o.HandleTurn(context.Background(), "CA13", "+1555", "Okay, goodbye!")

	if keep {
		t.Error("goodbye must end the call")
	}
	if reply == "" {
		t.Error("farewell reply must be sayable")
	}
	if ext.calls != 0 {
		t.Errorf("goodbye should not consult the extractor, got %d calls", ext.calls)
	}
	sess, _ := store.Get("CA13")
	if len(sess.Turns()) != 2 {
		t.Errorf("goodbye turn should still be recorded, got %d turns", len(sess.Turns()))
	}
}

func TestFollowUpReusesKnownLocation(t *testing.T) {
	ext := &fakeExtractor{steps: []extractStep{
		{result: searchAction("sushi restaurants", "McGill University")},
		{result: intent.Result{Reply: "Kazu has a small patio in summer."}},
	}}
	dir := &fakeDirectory{searchResults: sushiPlaces()}
	o, _ := newTestOrchestrator(ext, dir, &fakeNotifier{})

	o.HandleTurn(context.Background(), "CA14", "+1555", "Find sushi restaurants near McGill University")
	o.HandleTurn(context.Background(), "CA14", "+1555", "What about outdoor seating?")

	if len(ext.gotLocations) != 2 {
		t.Fatalf("expected 2 extractor calls, got %d", len(ext.gotLocations))
	}
	if ext.gotLocations[0] != "" {
		t.Errorf("first turn should have no known location, got %q", ext.gotLocations[0])
	}
	if ext.gotLocations[1] != "McGill University" {
		t.Errorf("follow-up should carry the established location, got %q", ext.gotLocations[1])
	}
}

func TestTurnsGrowByTwoPerUtterance(t *testing.T) {
	ext := &fakeExtractor{steps: []extractStep{{result: intent.Result{Reply: "Sure."}}}}
	o, store := newTestOrchestrator(ext, &fakeDirectory{}, &fakeNotifier{})

	for i := 0; i < 3; i++ {
		o.HandleTurn(context.Background(), "CA15", "+1555", "tell me something")
	}

	sess, _ := store.Get("CA15")
	if got := len(sess.Turns()); got != 6 {
		t.Errorf("3 utterances should yield 6 turns, got %d", got)
	}
}

func TestDirectReplyVerbatim(t *testing.T) {
	ext := &fakeExtractor{steps: []extractStep{{result: intent.Result{Reply: "Montreal is lovely in June."}}}}
	o, _ := newTestOrchestrator(ext, &fakeDirectory{}, &fakeNotifier{})

	reply, _ := o.HandleTurn(context.Background(), "CA16", "+1555", "how's Montreal")

	if reply != "Montreal is lovely in June." {
		t.Errorf("direct reply must pass through verbatim, got %q", reply)
	}
}

func TestDirectoryErrorApologizes(t *testing.T) {
	ext := &fakeExtractor{steps: []extractStep{{result: searchAction("sushi", "Montreal")}}}
	dir := &fakeDirectory{searchErr: errors.New("maps 500")}
	o, _ := newTestOrchestrator(ext, dir, &fakeNotifier{})

	reply, keep := o.HandleTurn(context.Background(), "CA17", "+1555", "sushi in Montreal")

	if !keep {
		t.Error("directory failure must keep the call alive")
	}
	if !strings.Contains(reply, "sorry") && !strings.Contains(reply, "Sorry") {
		t.Errorf("expected an apologetic reply, got %q", reply)
	}
}

func TestIsGoodbye(t *testing.T) {
	cases := []struct {
		utterance string
		want      bool
	}{
		{"goodbye", true},
		{"Okay, goodbye!", true},
		{"Bye", true},
		{"that's all", true},
		{"please hang up", true},
		{"maybe sushi", false},
		{"find bye-the-water cafes", false},
		{"what's good nearby", false},
	}
	for _, tc := range cases {
		if got := isGoodbye(tc.utterance); got != tc.want {
			t.Errorf("isGoodbye(%q) = %v, want %v", tc.utterance, got, tc.want)
		}
	}
}
