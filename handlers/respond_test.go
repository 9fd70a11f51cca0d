package handlers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"starLifeAPI/internal/apperr"
)

func TestRespondWithAppErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperr.NotFound("quest not found"), 404},
		{"already completed this period", apperr.New(apperr.KindAlreadyCompletedThisPeriod, "quest already completed this day"), 409},
		{"already completed", apperr.New(apperr.KindAlreadyCompleted, "event quest already completed"), 409},
		{"already owned", apperr.New(apperr.KindAlreadyOwned, "streak freeze already held"), 409},
		{"already joined", apperr.New(apperr.KindAlreadyJoined, "already a member"), 409},
		{"not available", apperr.New(apperr.KindNotAvailable, "event has ended"), 422},
		{"not a member", apperr.New(apperr.KindNotAMember, "join the community first"), 422},
		{"insufficient points", apperr.New(apperr.KindInsufficientPoints, "need 500 points, have 120"), 422},
		{"unclassified", errors.New("connection refused"), 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondWithAppError(rec, tc.err)

			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not valid JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("expected an error field in the response body")
			}
		})
	}
}

func TestRespondWithAppErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	respondWithAppError(rec, errors.New("pq: relation \"users\" does not exist"))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("internal errors must not leak details, got %q", body["error"])
	}
}
