package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"tech-entry-bot/config"
	"tech-entry-bot/internal/models"
	"tech-entry-bot/internal/services"
	"tech-entry-bot/internal/utils"

	"github.com/gorilla/mux"
)

// PairingGateway is the extra surface a QR-paired gateway exposes beyond
// message sending. The Twilio gateway does not implement it.
type PairingGateway interface {
	QRCode() (string, error)
	IsConnected() bool
}

type HTTPHandler struct {
	cfg        *config.Config
	dispatcher *services.Dispatcher
	sweeper    *services.Sweeper
	reducer    *services.Reducer
	directory  *services.ContactDirectory
	backup     *services.BackupService
	pairing    PairingGateway
}

func NewHTTPHandler(cfg *config.Config, dispatcher *services.Dispatcher, sweeper *services.Sweeper, reducer *services.Reducer, directory *services.ContactDirectory, backup *services.BackupService, pairing PairingGateway) *HTTPHandler {
	return &HTTPHandler{
		cfg:        cfg,
		dispatcher: dispatcher,
		sweeper:    sweeper,
		reducer:    reducer,
		directory:  directory,
		backup:     backup,
		pairing:    pairing,
	}
}

// @Summary Receive an inbound message
// @Description Webhook for gateway deliveries. Accepts Twilio form posts and JSON bodies.
// @Tags webhook
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /webhook [post]
func (h *HTTPHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	msg, err := decodeInbound(r)
	if err != nil {
		utils.LogError("Failed to decode request on /webhook: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Failed to decode request: "+err.Error()))
		return
	}

	if msg.From == "" {
		utils.LogError("Missing sender on /webhook")
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Missing sender"))
		return
	}

	if err := h.reducer.HandleInbound(r.Context(), msg.From, msg); err != nil {
		utils.LogError("Failed to process message on /webhook: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to process message: "+err.Error()))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Message processed", nil))
}

func decodeInbound(r *http.Request) (models.InboundMessage, error) {
	var msg models.InboundMessage

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&msg)
		return msg, err
	}

	if err := r.ParseForm(); err != nil {
		return msg, err
	}

	msg.From = r.FormValue("From")
	msg.Body = r.FormValue("Body")
	msg.ProfileName = r.FormValue("ProfileName")
	msg.ListReplyID = r.FormValue("ListReplyId")
	msg.ButtonID = r.FormValue("ButtonPayload")
	if msg.ButtonID == "" {
		msg.ButtonID = r.FormValue("ButtonReplyId")
	}
	msg.ContactName = r.FormValue("ContactName")
	msg.ContactPhone = r.FormValue("ContactPhone")
	return msg, nil
}

// @Summary Contact pending events
// @Description Send the opening prompt to up to limit pending events
// @Tags ops
// @Accept json
// @Produce json
// @Param request body models.KickRequest false "Batch limit"
// @Success 200 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse "Outside the sending window"
// @Router /ops/kick [post]
func (h *HTTPHandler) HandleKick(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.InSendingWindow(time.Now()) {
		utils.LogWarning("Kick rejected outside sending window %s-%s", h.cfg.SendingWindowStart, h.cfg.SendingWindowEnd)
		models.RespondWithJSON(w, http.StatusConflict,
			models.NewErrorResponse("Outside the sending window ("+h.cfg.SendingWindowStart+"-"+h.cfg.SendingWindowEnd+")"))
		return
	}

	var req models.KickRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.LogError("Failed to decode request on /ops/kick: %v", err)
			models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Failed to decode request: "+err.Error()))
			return
		}
	}
	if req.Limit <= 0 {
		req.Limit = h.cfg.DefaultKickLimit
	}

	summary, err := h.dispatcher.Kick(r.Context(), req.Limit)
	if err != nil {
		utils.LogError("Kick failed: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Kick failed: "+err.Error()))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Kick completed", summary))
}

// @Summary Follow up on stale events
// @Description Remind or expire events still waiting for an answer
// @Tags ops
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse "Outside the sending window"
// @Router /ops/sweep [post]
func (h *HTTPHandler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.InSendingWindow(time.Now()) {
		utils.LogWarning("Sweep rejected outside sending window %s-%s", h.cfg.SendingWindowStart, h.cfg.SendingWindowEnd)
		models.RespondWithJSON(w, http.StatusConflict,
			models.NewErrorResponse("Outside the sending window ("+h.cfg.SendingWindowStart+"-"+h.cfg.SendingWindowEnd+")"))
		return
	}

	summary, err := h.sweeper.Sweep(r.Context())
	if err != nil {
		utils.LogError("Sweep failed: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Sweep failed: "+err.Error()))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Sweep completed", summary))
}

// @Summary Back up the workbook
// @Description Upload a timestamped copy of the workbook to S3
// @Tags ops
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /ops/backup [post]
func (h *HTTPHandler) HandleBackup(w http.ResponseWriter, r *http.Request) {
	if h.backup == nil {
		utils.LogError("Backup service is not available on /ops/backup")
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Backup service is not available"))
		return
	}

	fileUrl, err := h.backup.BackupWorkbook(h.cfg.WorkbookPath)
	if err != nil {
		utils.LogError("Backup failed: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Backup failed: "+err.Error()))
		return
	}

	data := map[string]string{
		"path": fileUrl,
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Backup uploaded", data))
}

// @Summary Get the contact currently assigned to an event
// @Tags events
// @Produce json
// @Param event_id path string true "Event id"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /events/{event_id}/contact [get]
func (h *HTTPHandler) GetEventContact(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["event_id"]

	contactID, err := h.directory.CurrentContact(eventID)
	if err != nil {
		if errors.Is(err, models.ErrUnknownEvent) {
			models.RespondWithJSON(w, http.StatusNotFound, models.NewErrorResponse("Unknown event: "+eventID))
			return
		}
		utils.LogError("Failed to look up event %s: %v", eventID, err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to look up event: "+err.Error()))
		return
	}

	data := map[string]string{
		"event_id":   eventID,
		"contact_id": contactID,
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Contact found", data))
}

// @Summary Reassign an event to another contact
// @Description Point the event at a new contact and reset it for the next kick
// @Tags events
// @Accept json
// @Produce json
// @Param event_id path string true "Event id"
// @Param request body models.RedirectRequest true "Replacement contact"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /events/{event_id}/redirect [post]
func (h *HTTPHandler) RedirectEvent(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["event_id"]

	var req models.RedirectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogError("Failed to decode request on /events/redirect: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Failed to decode request: "+err.Error()))
		return
	}
	if req.ContactID == "" {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("contact_id is required"))
		return
	}

	err := h.directory.Redirect(eventID, req.ContactID)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrUnknownEvent):
		models.RespondWithJSON(w, http.StatusNotFound, models.NewErrorResponse("Unknown event: "+eventID))
		return
	case errors.Is(err, models.ErrUnknownContact):
		models.RespondWithJSON(w, http.StatusNotFound, models.NewErrorResponse("Unknown contact: "+req.ContactID))
		return
	case errors.Is(err, models.ErrInvalidRedirect):
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
		return
	default:
		utils.LogError("Redirect of event %s failed: %v", eventID, err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Redirect failed: "+err.Error()))
		return
	}

	data := map[string]string{
		"event_id":   eventID,
		"contact_id": req.ContactID,
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Event reassigned", data))
}

// @Summary Get QR Code
// @Description Get QR code as base64 image for WhatsApp pairing
// @Tags authentication
// @Produce json
// @Success 200 {object} models.APIResponse "QR code in base64"
// @Failure 404 {object} models.APIResponse "QR code not available"
// @Router /qrcode [get]
func (h *HTTPHandler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	if h.pairing == nil {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("The configured gateway does not use QR pairing"))
		return
	}

	if h.pairing.IsConnected() {
		data := map[string]interface{}{
			"status":  "connected",
			"message": "WhatsApp is already connected and ready to use!",
		}
		models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("WhatsApp connected", data))
		return
	}

	qrCode, err := h.pairing.QRCode()
	if err != nil {
		utils.LogError("Failed to get QR code on /qrcode: %v", err)
		models.RespondWithJSON(w, http.StatusNotFound, models.NewErrorResponse("The QR code is not available yet. Please wait a few seconds and try again."))
		return
	}

	instructions := []string{
		"To connect your WhatsApp, follow the steps below:",
		"1. Open WhatsApp on your phone",
		"2. Tap Menu (three dots) or Settings",
		"3. Select 'Linked devices'",
		"4. Tap 'Link a device'",
		"5. Point your phone camera at this QR code",
	}

	data := map[string]interface{}{
		"qrcode":       qrCode,
		"instructions": strings.Join(instructions, "\n"),
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("QR code generated", data))
}

// @Summary Check Connection Status
// @Description Check if the message gateway is connected
// @Tags authentication
// @Produce json
// @Success 200 {object} map[string]interface{} "Connection status"
// @Router /status [get]
func (h *HTTPHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := "connected"
	connected := true
	message := "The gateway is connected and ready to send messages!"

	if h.pairing != nil && !h.pairing.IsConnected() {
		status = "disconnected"
		connected = false
		message = "WhatsApp is disconnected. Scan the QR code to pair."
	}

	response := map[string]interface{}{
		"status":    status,
		"connected": connected,
		"message":   message,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// @Summary Health check
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *HTTPHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
