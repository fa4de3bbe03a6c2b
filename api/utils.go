package api

import (
	"encoding/json"
	"log"
	"net/http"

	"TallyBridge/api/constants"
)

// RespondWithError sends a consistent JSON error envelope.
func RespondWithError(w http.ResponseWriter, status int, errMsg string) {
	log.Println("[ERROR]", errMsg)
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   errMsg,
	})
}

// RespondWithJSON sends a success payload with the standard envelope fields
// merged in.
func RespondWithJSON(w http.ResponseWriter, status int, payload map[string]interface{}) {
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	w.WriteHeader(status)
	if payload == nil {
		payload = map[string]interface{}{}
	}
	if _, ok := payload["success"]; !ok {
		payload["success"] = true
	}
	json.NewEncoder(w).Encode(payload)
}

// DecodeJSONBody decodes a request body, reporting malformed JSON uniformly.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
		return false
	}
	return true
}
