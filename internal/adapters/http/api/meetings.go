// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// MeetingsHandler handles meeting ingestion requests.
type MeetingsHandler struct {
	deps IngestDependencies
}

// NewMeetingsHandler creates a new meetings handler.
func NewMeetingsHandler(deps IngestDependencies) *MeetingsHandler {
	return &MeetingsHandler{deps: deps}
}

// HandlePostMeeting handles POST /meetings requests.
func (h *MeetingsHandler) HandlePostMeeting(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_meeting"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if h.deps.SeenAndRecord(r.Context(), req.RecordID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), req.toEvent()); !ok {
		h.deps.Unrecord(r.Context(), req.RecordID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
