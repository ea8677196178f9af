package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/chase-predictor/internal/metrics"
	"github.com/yourusername/chase-predictor/internal/prediction"
)

const (
	writeDeadline = 5 * time.Second
	pongWait      = 60 * time.Second
	pingInterval  = 45 * time.Second
)

// Frame types sent on the live stream
const (
	FramePrediction = "prediction"
	FrameError      = "error"
)

// LiveFrame is one reply on the live stream. Every inbound request gets exactly one frame.
type LiveFrame struct {
	Type       string              `json:"type"`
	Seq        int                 `json:"seq"`
	Prediction *PredictionResponse `json:"prediction,omitempty"`
	Error      *ErrorResponse      `json:"error,omitempty"`
}

// Live upgrades to a websocket. Each inbound JSON prediction request is answered
// in order with a prediction or an error frame; a bad frame does not close the stream.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Live upgrade failed")
		return
	}
	defer conn.Close()

	metrics.LiveConnections.Inc()
	defer metrics.LiveConnections.Dec()

	requestID := RequestIDFrom(r.Context())
	log := h.logger.WithField("request_id", requestID)
	log.Info("Live client connected")

	conn.SetReadLimit(MaxBodySize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go keepAlive(conn, done)

	for seq := 1; ; seq++ {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("Live client dropped")
			} else {
				log.Info("Live client disconnected")
			}
			return
		}

		frame := h.decodeAndAnswer(r, seq, data)
		if !h.writeFrame(conn, frame) {
			return
		}
	}
}

// decodeAndAnswer turns one inbound message into its reply. Any decode failure,
// including an empty or truncated message, is answered with an error frame.
func (h *Handler) decodeAndAnswer(r *http.Request, seq int, data []byte) LiveFrame {
	var req prediction.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return errorFrame(seq, RequestIDFrom(r.Context()), CodeInvalidInput, "malformed frame: "+err.Error(), http.StatusBadRequest)
	}
	return h.answer(r, seq, req)
}

func (h *Handler) answer(r *http.Request, seq int, req prediction.Request) LiveFrame {
	requestID := RequestIDFrom(r.Context())

	if err := req.Validate(); err != nil {
		status, code := classify(err)
		return errorFrame(seq, requestID, code, err.Error(), status)
	}

	out, err := h.predictor.Predict(r.Context(), req)
	if err != nil {
		status, code := classify(err)
		msg := err.Error()
		if code == CodeInternal {
			msg = "internal error"
		}
		return errorFrame(seq, requestID, code, msg, status)
	}

	resp := &PredictionResponse{Outcome: out}
	if h.catalog != nil {
		resp.Matchup = h.catalog.Compare(req.BattingTeam, req.BowlingTeam)
	}
	return LiveFrame{Type: FramePrediction, Seq: seq, Prediction: resp}
}

func errorFrame(seq int, requestID, code, msg string, status int) LiveFrame {
	return LiveFrame{
		Type: FrameError,
		Seq:  seq,
		Error: &ErrorResponse{
			Error:     msg,
			Code:      code,
			Retryable: status == http.StatusBadGateway,
			RequestID: requestID,
		},
	}
}

func (h *Handler) writeFrame(conn *websocket.Conn, frame LiveFrame) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := conn.WriteJSON(frame); err != nil {
		h.logger.WithError(err).Debug("Live write failed")
		return false
	}
	return true
}

// keepAlive pings until done is closed. WriteControl is safe alongside the reader's writes.
func keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}
