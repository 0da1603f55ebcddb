package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/loanbridge/apply/internal/mailer"
)

// RelayHandler forwards a JSON-described email over SMTP. It is stateless:
// every request validates, hands the message to the transport and maps the
// outcome onto a fixed JSON shape.
type RelayHandler struct {
	BaseHandler
	sender      mailer.Sender
	defaultFrom string
}

func NewRelayHandler(logger *slog.Logger, sender mailer.Sender, defaultFrom string) *RelayHandler {
	return &RelayHandler{
		BaseHandler: BaseHandler{Logger: logger},
		sender:      sender,
		defaultFrom: defaultFrom,
	}
}

// recipients accepts either a single address string or an array of
// addresses. An array is flattened to one comma-separated string before it
// reaches the transport; a plain string passes through unchanged.
type recipients string

func (r *recipients) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = recipients(single)
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("to must be a string or an array of strings")
	}
	*r = recipients(strings.Join(many, ", "))
	return nil
}

type sendRequest struct {
	To          recipients          `json:"to"`
	From        string              `json:"from"`
	Subject     string              `json:"subject"`
	HTML        string              `json:"html"`
	Text        string              `json:"text"`
	Attachments []attachmentPayload `json:"attachments"`
}

type attachmentPayload struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type sendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Send handles POST requests describing one outbound email.
//
// Missing `to` or `subject` is a client error and is rejected before any
// transport work. Everything else that goes wrong — including a malformed
// body — is a transport-side failure and reported as a 500 with the
// underlying message.
func (h *RelayHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.failure(w, r, err)
		return
	}

	if req.To == "" || strings.TrimSpace(req.Subject) == "" {
		// Not an operator-facing error; the form simply sent too little.
		_ = h.writeJSON(w, http.StatusBadRequest, sendResponse{
			Success: false,
			Error:   "Missing required fields",
		}, nil)
		return
	}

	from := req.From
	if from == "" {
		from = h.defaultFrom
	}

	msg := mailer.Message{
		From:    from,
		To:      string(req.To),
		Subject: req.Subject,
		Text:    req.Text,
		HTML:    req.HTML,
	}
	for _, att := range req.Attachments {
		msg.Attachments = append(msg.Attachments, mailer.Attachment{
			Filename: att.Filename,
			Content:  att.Content,
		})
	}

	result, err := h.sender.Send(msg)
	if err != nil {
		h.failure(w, r, err)
		return
	}

	h.Logger.Info("email relayed", "to", msg.To, "message_id", result.MessageID)
	_ = h.writeJSON(w, http.StatusOK, sendResponse{
		Success:   true,
		MessageID: result.MessageID,
	}, nil)
}

func (h *RelayHandler) failure(w http.ResponseWriter, r *http.Request, err error) {
	h.Logger.Error("email relay failed", "method", r.Method, "uri", r.URL.RequestURI(), "error", err)
	_ = h.writeJSON(w, http.StatusInternalServerError, sendResponse{
		Success: false,
		Error:   err.Error(),
	}, nil)
}
