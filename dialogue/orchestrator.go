// Package dialogue contains the turn-taking engine. One inbound utterance
// produces exactly one spoken reply and at most one dispatched action, with
// session state updated along the way. Adapter failures are converted to
// apologetic replies at this boundary and never reach the transport.
package dialogue

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/WilliamZhang9/Call2Map/intent"
	"github.com/WilliamZhang9/Call2Map/notify"
	"github.com/WilliamZhang9/Call2Map/places"
	"github.com/WilliamZhang9/Call2Map/session"
)

const (
	defaultHistoryWindow = 10
	defaultTurnTimeout   = 8 * time.Second
)

const (
	replyDidntCatch = "I didn't catch that. Could you say it again?"
	replyApology    = "I'm sorry, I'm having trouble right now. Could you try that again?"
	replyGoodbye    = "Thank you for calling. Goodbye!"
	replyBusy       = "I'm sorry, all lines are busy right now. Please call back in a few minutes. Goodbye!"
	replyUnsure     = "I'm not sure how to help with that. Could you rephrase?"
)

// Orchestrator drives one call turn at a time: look up the session, consult
// the extractor, dispatch at most one action, record both turns, and return
// a sayable reply plus whether the gateway should keep listening.
type Orchestrator struct {
	store     *session.Store
	extractor intent.Extractor
	directory places.Directory
	notifier  notify.Notifier

	historyWindow int
	turnTimeout   time.Duration
}

// New creates an orchestrator. historyWindow and turnTimeout fall back to
// defaults when zero.
func New(store *session.Store, extractor intent.Extractor, directory places.Directory, notifier notify.Notifier, historyWindow int, turnTimeout time.Duration) *Orchestrator {
	if historyWindow <= 0 {
		historyWindow = defaultHistoryWindow
	}
	if turnTimeout <= 0 {
		turnTimeout = defaultTurnTimeout
	}
	return &Orchestrator{
		store:         store,
		extractor:     extractor,
		directory:     directory,
		notifier:      notifier,
		historyWindow: historyWindow,
		turnTimeout:   turnTimeout,
	}
}

// HandleTurn processes one recognized utterance for a call. A blank
// utterance yields a re-prompt without touching history; a goodbye ends the
// call. Every handled non-empty utterance appends exactly one user and one
// assistant entry, even when an adapter fails mid-turn.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, caller, utterance string) (string, bool) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return replyDidntCatch, true
	}

	sess, err := o.store.GetOrCreate(ctx, sessionID, caller)
	if err != nil {
		log.Printf("❌ Failed to get session %s: %v", sessionID, err)
		return replyBusy, false
	}

	// Serialize turns per session; a duplicate webhook delivery waits
	// here and then sees the first delivery's completed state.
	sess.BeginTurn()
	defer sess.EndTurn()

	if isGoodbye(utterance) {
		sess.AppendTurn(session.RoleUser, utterance)
		sess.AppendTurn(session.RoleAssistant, replyGoodbye)
		return replyGoodbye, false
	}

	sess.AppendTurn(session.RoleUser, utterance)

	tctx, cancel := context.WithTimeout(ctx, o.turnTimeout)
	defer cancel()

	reply := o.respond(tctx, sess, utterance)
	sess.AppendTurn(session.RoleAssistant, reply)
	return reply, true
}

func (o *Orchestrator) respond(ctx context.Context, sess *session.Session, utterance string) string {
	result, err := o.extractor.Extract(ctx, utterance, sess.RecentTurns(o.historyWindow), sess.KnownLocation())
	if err != nil {
		log.Printf("❌ [%s] Extractor error: %v", sess.ID, err)
		return replyApology
	}

	if result.Action == nil {
		reply := strings.TrimSpace(result.Reply)
		if reply == "" {
			return replyUnsure
		}
		return reply
	}

	log.Printf("🔧 [%s] Dispatching action: %s", sess.ID, result.Action.Kind)
	switch result.Action.Kind {
	case intent.KindSearchPlaces:
		return o.handleSearch(ctx, sess, result.Action)
	case intent.KindReservationInfo:
		return o.handleReservation(ctx, sess, result.Action)
	case intent.KindSendMessage:
		return o.handleSendMessage(ctx, sess, result.Action)
	default:
		return replyUnsure
	}
}

func (o *Orchestrator) handleSearch(ctx context.Context, sess *session.Session, action *intent.ActionRequest) string {
	query := action.Arg("query")
	location := action.Arg("location")
	if query == "" || location == "" {
		return "I need both what you're looking for and a location. Could you try again?"
	}

	results, err := o.directory.Search(ctx, query, location)
	if err != nil {
		log.Printf("❌ [%s] Directory error: %v", sess.ID, err)
		return replyApology
	}
	if len(results) == 0 {
		return fmt.Sprintf("I couldn't find any %s near %s. Could you try a different search?", query, location)
	}

	sess.SetKnownLocation(location)
	top := results[0]
	sess.SetFocalPlace(&top)

	reply := summarizePlaces(query, results)

	// Text the full list only when there is more than one result. The
	// spoken reply claims delivery only when the send succeeded.
	if len(results) > 1 && o.send(ctx, sess, notify.FormatPlaces(results)) {
		reply += " I've also sent the details to your phone."
	}
	return reply
}

func (o *Orchestrator) handleReservation(ctx context.Context, sess *session.Session, action *intent.ActionRequest) string {
	placeName := action.Arg("place_name")
	if placeName == "" {
		return "Which place would you like to book at?"
	}

	location := action.Arg("location")
	if location == "" {
		location = sess.KnownLocation()
	}
	if location == "" {
		if fp := sess.FocalPlace(); fp != nil {
			location = fp.Address
		}
	}
	if location == "" {
		return fmt.Sprintf("Sure — which area is %s in?", placeName)
	}

	results, err := o.directory.Search(ctx, placeName, location)
	if err != nil {
		log.Printf("❌ [%s] Directory error: %v", sess.ID, err)
		return replyApology
	}
	if len(results) == 0 {
		return fmt.Sprintf("I couldn't find %s near %s.", placeName, location)
	}

	place := results[0]
	sess.SetFocalPlace(&place)
	if place.ID == "" {
		return fmt.Sprintf("I found %s but couldn't get booking details.", place.Name)
	}

	info, err := o.directory.ReservationInfo(ctx, place.ID)
	if err != nil {
		log.Printf("❌ [%s] Reservation lookup error: %v", sess.ID, err)
		return fmt.Sprintf("I found %s but couldn't get booking details right now.", place.Name)
	}

	reply := fmt.Sprintf("For %s, ", place.Name)
	switch info.Method {
	case places.MethodOnline:
		reply += fmt.Sprintf("you can book online through %s.", info.Platform)
		if o.send(ctx, sess, notify.FormatBooking(place, info)) {
			reply += " I've texted you the booking link."
		}
	case places.MethodPhone:
		reply += fmt.Sprintf("please call them at %s to make a reservation.", info.Phone)
		if o.send(ctx, sess, notify.FormatPhoneReservation(place, info)) {
			reply += " I've texted you their phone number."
		}
	default:
		if place.Website != "" {
			reply += "I don't have direct booking information, but you can check their website."
			if o.send(ctx, sess, notify.FormatWebsite(place)) {
				reply += " I've texted you the details."
			}
		} else {
			reply += "I couldn't find any booking information."
		}
	}
	return reply
}

func (o *Orchestrator) handleSendMessage(ctx context.Context, sess *session.Session, action *intent.ActionRequest) string {
	message := action.Arg("message")
	if message == "" {
		return "I need a message to send. What should it say?"
	}
	if err := o.notifier.Send(ctx, sess.Caller, message); err != nil {
		log.Printf("⚠️ [%s] SMS send failed: %v", sess.ID, err)
		return "I had trouble sending the text. Please try again."
	}
	return "I've sent the information to your phone."
}

// send is the best-effort SMS helper: failure is logged and reported only
// through the return value, never as a fault.
func (o *Orchestrator) send(ctx context.Context, sess *session.Session, body string) bool {
	if err := o.notifier.Send(ctx, sess.Caller, body); err != nil {
		log.Printf("⚠️ [%s] SMS send failed: %v", sess.ID, err)
		return false
	}
	return true
}

// summarizePlaces builds the spoken summary, naming at most the top three
// results.
func summarizePlaces(query string, results []places.Place) string {
	top := results[0]
	var b strings.Builder

	if len(results) == 1 {
		fmt.Fprintf(&b, "I found one place for %s: %s", query, top.Name)
	} else {
		fmt.Fprintf(&b, "I found %d places for %s. The top pick is %s", len(results), query, top.Name)
	}
	if top.Rating != nil {
		fmt.Fprintf(&b, ", rated %.1f stars", *top.Rating)
	}
	b.WriteString(".")

	if len(results) > 1 {
		others := results[1:]
		if len(others) > 2 {
			others = others[:2]
		}
		names := make([]string, 0, len(others))
		for _, p := range others {
			names = append(names, p.Name)
		}
		fmt.Fprintf(&b, " Other options include %s.", strings.Join(names, " and "))
	}
	return b.String()
}

var goodbyePhrases = map[string]struct{}{
	"goodbye":        {},
	"good bye":       {},
	"bye":            {},
	"bye bye":        {},
	"that's all":     {},
	"that is all":    {},
	"no that's all":  {},
	"i'm done":       {},
	"im done":        {},
	"hang up":        {},
	"no thanks bye":  {},
	"thanks goodbye": {},
}

// isGoodbye reports whether the utterance is a call-ending phrase. Matching
// is on the normalized whole utterance so "maybe" never trips on "bye".
func isGoodbye(utterance string) bool {
	norm := strings.ToLower(strings.TrimSpace(utterance))
	norm = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r == ' ', r == '\'':
			return r
		}
		return -1
	}, norm)
	norm = strings.Join(strings.Fields(norm), " ")

	if _, ok := goodbyePhrases[norm]; ok {
		return true
	}
	return strings.Contains(norm, "goodbye") || strings.HasSuffix(norm, "hang up")
}
