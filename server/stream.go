package server

import (
	"encoding/base64"
	"log"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/WilliamZhang9/Call2Map/audio"
)

// streamEvent is one Twilio Media Streams frame. Twilio sends connected,
// start, media, stop and mark events over the socket.
type streamEvent struct {
	Event string `json:"event"`
	Start *struct {
		StreamSid string `json:"streamSid"`
		CallSid   string `json:"callSid"`
	} `json:"start,omitempty"`
	Media *struct {
		Payload string `json:"payload"` // base64-encoded mu-law audio
	} `json:"media,omitempty"`
}

// handleMediaStream accepts a Twilio Media Streams connection and decodes
// the inbound mu-law audio into a bounded PCM buffer. This is a transport
// utility only; turn handling stays on the speech webhook.
func (s *Server) handleMediaStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ Media stream upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id := uuid.New().String()[:8]
	buf := audio.NewBuffer(s.cfg.MaxBufferSize)
	var callSid string
	log.Printf("📞 [%s] Media stream connected", id)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("🔌 [%s] Media stream read error: %v", id, err)
			return
		}

		var event streamEvent
		if err := sonic.Unmarshal(message, &event); err != nil {
			log.Printf("⚠️ [%s] Failed to parse stream message: %v", id, err)
			continue
		}

		switch event.Event {
		case "connected":
			log.Printf("📞 [%s] Twilio stream handshake complete", id)

		case "start":
			if event.Start == nil {
				log.Printf("⚠️ [%s] start event missing start data", id)
				continue
			}
			callSid = event.Start.CallSid
			log.Printf("📞 [%s] Stream started, StreamSid: %s, CallSid: %s",
				id, event.Start.StreamSid, callSid)

		case "media":
			if event.Media == nil {
				continue
			}
			muLaw, err := base64.StdEncoding.DecodeString(event.Media.Payload)
			if err != nil {
				log.Printf("⚠️ [%s] Failed to decode stream audio: %v", id, err)
				continue
			}
			if err := buf.Append(audio.MuLawToPCM16k(muLaw)); err != nil {
				log.Printf("⚠️ [%s] Audio buffer full, clearing buffered audio", id)
				buf.Clear()
			}
			// Flowing audio counts as activity; keep the call's session
			// out of idle cleanup even between spoken turns.
			if sess, ok := s.store.Get(callSid); ok {
				sess.Touch()
			}

		case "stop":
			log.Printf("📞 [%s] Stream stopped, %d bytes buffered", id, buf.Size())
			return

		case "mark":
			// informational, ignore

		default:
			log.Printf("⚠️ [%s] Unknown stream event: %s", id, event.Event)
		}
	}
}
