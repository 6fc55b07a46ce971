package server

import (
	"encoding/json"
	"net/http"
	"testing"
)

type quoteResponsePayload struct {
	LeadID  string       `json:"lead_id"`
	Stored  *bool        `json:"stored"`
	Monthly premiumRange `json:"monthly"`
	Annual  premiumRange `json:"annual"`
}

func TestQuoteEstimateEndpoint(t *testing.T) {
	app := newTestApp(nil)

	recorder := postJSON(t, app, "/api/v1/quotes/estimate", `{
		"teaching_type": "yoga",
		"experience_level": "5+",
		"cover_type": "liability",
		"additional_options": []
	}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var payload quoteResponsePayload
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Monthly.Low != 15 || payload.Monthly.High != 21 {
		t.Fatalf("unexpected monthly range: %+v", payload.Monthly)
	}
	if payload.Annual.Low != 180 || payload.Annual.High != 252 {
		t.Fatalf("unexpected annual range: %+v", payload.Annual)
	}
}

func TestQuoteLeadValidatesContact(t *testing.T) {
	app := newTestApp(nil)

	recorder := postJSON(t, app, "/api/v1/quotes/lead", `{"name": "", "email": ""}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing contact, got %d", recorder.Code)
	}

	recorder = postJSON(t, app, "/api/v1/quotes/lead", `{"name": "Ana", "email": "not-an-email"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid email, got %d", recorder.Code)
	}
}

func TestQuoteLeadLogOnlyWithoutDatabase(t *testing.T) {
	app := newTestApp(nil)

	recorder := postJSON(t, app, "/api/v1/quotes/lead", `{
		"name": "Ana",
		"email": "ana@example.com",
		"postcode": "LS1 4AP",
		"experience_level": "3-5",
		"cover_type": "premium"
	}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var payload quoteResponsePayload
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Stored == nil || *payload.Stored {
		t.Fatalf("expected stored=false without a database, got %+v", payload.Stored)
	}
	if payload.Monthly.Low == 0 || payload.Monthly.High == 0 {
		t.Fatalf("expected estimate in the acknowledgement, got %+v", payload.Monthly)
	}
}
