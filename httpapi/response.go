package httpapi

import (
	"encoding/json"
	"net/http"

	"fundledger/domain/apperrors"

	log "github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// writeError maps err onto the error taxonomy. Internal causes are logged, never sent.
func writeError(w http.ResponseWriter, err error) {
	appErr := apperrors.FromError(err)

	if appErr.Code == apperrors.CodeInternal {
		log.WithError(err).Error("Request failed with internal error")
		writeJSON(w, appErr.StatusCode, ErrorResponse{
			Error: apperrors.ErrInternal.Message,
			Code:  apperrors.CodeInternal,
		})
		return
	}

	resp := ErrorResponse{
		Error: appErr.Message,
		Code:  appErr.Code,
	}
	if len(appErr.Details) > 0 {
		resp.Details = appErr.Details
	}
	writeJSON(w, appErr.StatusCode, resp)
}
