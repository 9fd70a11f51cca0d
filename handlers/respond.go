package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"starLifeAPI/internal/apperr"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithAppError maps the service failure taxonomy onto HTTP statuses:
// missing things are 404, duplicate actions are 409, rule violations are
// 422, and anything unclassified is a 500 with a generic body.
func respondWithAppError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		respondWithError(w, http.StatusNotFound, err.Error())
	case apperr.KindAlreadyCompletedThisPeriod,
		apperr.KindAlreadyCompleted,
		apperr.KindAlreadyOwned,
		apperr.KindAlreadyJoined:
		respondWithError(w, http.StatusConflict, err.Error())
	case apperr.KindNotAvailable,
		apperr.KindNotAMember,
		apperr.KindInsufficientPoints:
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
