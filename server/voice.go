package server

import (
	"log"
	"net/http"

	"github.com/twilio/twilio-go/twiml"
)

const (
	voiceName = "Polly.Joanna"

	greetingText = "Hello! Welcome to Call 2 Map. I'm your AI assistant. I can help you find restaurants, stores, and other places near you."
	openPrompt   = "How can I help you today?"
	againPrompt  = "Is there anything else I can help you with?"
	silenceText  = "I didn't hear anything. Please call back if you need assistance. Goodbye!"
	farewellText = "Thank you for using Call 2 Map. Goodbye!"
	busyText     = "I'm sorry, all lines are busy right now. Please call back in a few minutes. Goodbye!"
)

// handleIncoming greets a new call and opens speech gathering. The session
// is created here so the greeting turn exists before the first utterance.
func (s *Server) handleIncoming(w http.ResponseWriter, r *http.Request) {
	caller := r.FormValue("From")
	callSid := r.FormValue("CallSid")
	if callSid == "" {
		http.Error(w, "missing CallSid", http.StatusBadRequest)
		return
	}

	log.Printf("📞 Incoming call from %s, SID: %s", caller, callSid)

	if _, err := s.store.GetOrCreate(r.Context(), callSid, caller); err != nil {
		log.Printf("❌ Failed to create session for %s: %v", callSid, err)
		s.writeTwiML(w, s.say(busyText), &twiml.VoiceHangup{})
		return
	}

	s.writeTwiML(w,
		s.say(greetingText),
		s.gather(s.say(openPrompt)),
		s.say(silenceText),
	)
}

// handleSpeech routes one recognized utterance through the orchestrator and
// renders its reply. An empty SpeechResult is handed through unchanged; the
// orchestrator owns the re-prompt.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	callSid := r.FormValue("CallSid")
	if callSid == "" {
		http.Error(w, "missing CallSid", http.StatusBadRequest)
		return
	}
	speech := r.FormValue("SpeechResult")
	log.Printf("🗣️ [%s] Caller said: %s", callSid, speech)

	reply, keepListening := s.turns.HandleTurn(r.Context(), callSid, r.FormValue("From"), speech)

	if !keepListening {
		s.writeTwiML(w, s.say(reply), &twiml.VoiceHangup{})
		s.store.Remove(r.Context(), callSid)
		log.Printf("📞 [%s] Call ended", callSid)
		return
	}

	s.writeTwiML(w,
		s.say(reply),
		s.gather(s.say(againPrompt)),
		s.say(farewellText),
	)
}

func (s *Server) say(text string) *twiml.VoiceSay {
	return &twiml.VoiceSay{Message: text, Voice: voiceName}
}

// gather opens a speech-recognition window that posts the result back to
// the speech webhook.
func (s *Server) gather(inner ...twiml.Element) *twiml.VoiceGather {
	return &twiml.VoiceGather{
		Input:         "speech",
		Timeout:       "3",
		SpeechTimeout: "auto",
		Action:        s.cfg.BaseURL + "/voice/process-speech",
		Method:        "POST",
		InnerElements: inner,
	}
}

func (s *Server) writeTwiML(w http.ResponseWriter, verbs ...twiml.Element) {
	doc, err := twiml.Voice(verbs)
	if err != nil {
		log.Printf("❌ TwiML render error: %v", err)
		http.Error(w, "twiml error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	w.Write([]byte(doc))
}
