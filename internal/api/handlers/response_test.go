package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

type sampleRequest struct {
	Name   string `json:"name" validate:"required"`
	Amount int    `json:"amount" validate:"gte=1"`
}

func TestDecodeJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name": "x", "amount": 2}`))
	var req sampleRequest

	require.NoError(t, DecodeJSON(r, &req))
	assert.Equal(t, "x", req.Name)
}

func TestDecodeJSON_ValidationUsesJSONNames(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount": 0}`))
	var req sampleRequest

	err := DecodeJSON(r, &req)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "name: required")
	assert.Contains(t, err.Error(), "amount: gte")
}

func TestDecodeJSON_Malformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	var req sampleRequest

	assert.Error(t, DecodeJSON(r, &req))
}

func TestRespondDenied_CarriesReason(t *testing.T) {
	w := httptest.NewRecorder()
	err := fmt.Errorf("denied: %w", domain.ValidationError{Code: domain.CodeGuardDenied, Message: "client consent is required"})

	RespondDenied(w, "действие запрещено", err)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Details, 1)
	assert.Equal(t, "client consent is required", body.Details[0].Message)
}
