package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/prostorehq/storefront-backend/pkg/errors"
)

type samplePayload struct {
	Name string `json:"name" validate:"required"`
	Qty  int    `json:"qty" validate:"required,min=1"`
}

func TestDecodeJSONBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"tee","qty":2}`))

	var payload samplePayload
	require.NoError(t, DecodeJSONBody(r, &payload))
	assert.Equal(t, "tee", payload.Name)
	assert.Equal(t, 2, payload.Qty)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"tee","qty":2,"extra":true}`))

	var payload samplePayload
	err := DecodeJSONBody(r, &payload)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestDecodeJSONBodyReportsFieldsByJSONTag(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"tee","qty":0}`))

	var payload samplePayload
	err := DecodeJSONBody(r, &payload)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "qty")
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=25", nil)

	got, err := ParseQueryInt(r, "limit", 20, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 25, got)

	got, err = ParseQueryInt(r, "offset", 0, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	r = httptest.NewRequest("GET", "/?limit=abc", nil)
	_, err = ParseQueryInt(r, "limit", 20, 1, 100)
	require.Error(t, err)

	r = httptest.NewRequest("GET", "/?limit=500", nil)
	_, err = ParseQueryInt(r, "limit", 20, 1, 100)
	require.Error(t, err)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "tee", SanitizeString("  tee  ", 0))
	assert.Equal(t, "te", SanitizeString("tee", 2))
}
