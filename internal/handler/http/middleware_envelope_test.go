package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-service-bootstrap/internal/apperr"
	"github.com/MKhiriev/go-service-bootstrap/internal/crypto"
	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
	"github.com/MKhiriev/go-service-bootstrap/internal/mock"
	"github.com/MKhiriev/go-service-bootstrap/internal/utils"
	"github.com/MKhiriev/go-service-bootstrap/models"
)

const testEncryptionKey = "pipeline-envelope-key"

func withEnvelope(o *Options) {
	o.EncryptionKey = testEncryptionKey
}

func sealRequest(t *testing.T, actualData any, randNum any) string {
	t.Helper()
	raw, err := json.Marshal(actualData)
	require.NoError(t, err)

	ciphertext, err := crypto.NewEnvelopeCodec().Encrypt(models.EnvelopeRequest{
		ActualData: raw,
		RandNum:    randNum,
	}, testEncryptionKey)
	require.NoError(t, err)

	body, err := json.Marshal(models.Envelope{Data: ciphertext})
	require.NoError(t, err)
	return string(body)
}

func openResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope models.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope), rr.Body.String())
	require.NotEmpty(t, envelope.Data)

	plain, ok := crypto.NewEnvelopeCodec().Decrypt(envelope.Data, testEncryptionKey).(map[string]any)
	require.True(t, ok, "response envelope must decrypt to an object")
	return plain
}

func TestEnvelope_PostRoundTrip(t *testing.T) {
	_, entry := newTestPipeline(t, withEnvelope)

	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(sealRequest(t, map[string]any{"name": "saw"}, 42)))
	req.Header.Set("Content-Type", "application/json")

	rr := serve(entry, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotContains(t, rr.Body.String(), "saw")

	plain := openResponse(t, rr)
	assert.Equal(t, map[string]any{"id": float64(1), "name": "saw"}, plain["responseData"])
	assert.Equal(t, float64(42), plain["randNum"])
}

func TestEnvelope_GetUsesHeaderToken(t *testing.T) {
	_, entry := newTestPipeline(t, withEnvelope)

	tests := []struct {
		name   string
		header string
		want   any
	}{
		{name: "numeric header", header: "7", want: float64(7)},
		{name: "string header", header: "abc", want: "abc"},
		{name: "no header", want: float64(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/items", nil)
			if tt.header != "" {
				req.Header.Set(randNumHeader, tt.header)
			}

			rr := serve(entry, req)
			require.Equal(t, http.StatusOK, rr.Code)

			plain := openResponse(t, rr)
			assert.Equal(t, tt.want, plain["randNum"])
			assert.Equal(t, []any{map[string]any{"id": float64(1), "name": "hammer"}}, plain["responseData"])
		})
	}
}

func TestEnvelope_PlainBodyPassesThrough(t *testing.T) {
	_, entry := newTestPipeline(t, withEnvelope)

	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"name":"saw"}`))
	req.Header.Set("Content-Type", "application/json")

	rr := serve(entry, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	plain := openResponse(t, rr)
	assert.Equal(t, float64(0), plain["randNum"], "no stashed token defaults to 0")
}

func TestEnvelope_ErrorsAreNotEncrypted(t *testing.T) {
	_, entry := newTestPipeline(t, withEnvelope)

	rr := serve(entry, httptest.NewRequest(http.MethodGet, "/invalid/resource", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apperr.CodeEndpointNotFound, decodeErrorBody(t, rr).Code)

	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(sealRequest(t, map[string]any{"name": ""}, 1)))
	req.Header.Set("Content-Type", "application/json")
	rr = serve(entry, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apperr.CodeRequestInvalid, decodeErrorBody(t, rr).Code)
}

func TestEnvelope_NonJSONResponsesPassThrough(t *testing.T) {
	_, entry := newTestPipeline(t, withEnvelope, func(o *Options) {
		o.SchemaPath = ""
		o.DisableValidation = true
		o.Routes = []models.Route{{
			Method:  http.MethodGet,
			Pattern: "/text",
			Handler: func(w http.ResponseWriter, r *http.Request) error {
				w.Header().Set("Content-Type", "text/plain")
				_, err := w.Write([]byte("just text"))
				return err
			},
		}}
	})

	rr := serve(entry, httptest.NewRequest(http.MethodGet, "/text", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "just text", rr.Body.String())

	rr = serve(entry, httptest.NewRequest(http.MethodGet, "/health-check", nil))
	assert.Equal(t, "OK", rr.Body.String(), "probes are never wrapped")
}

func TestEnvelope_WrongKeyRejected(t *testing.T) {
	_, entry := newTestPipeline(t, withEnvelope)

	ciphertext, err := crypto.NewEnvelopeCodec().Encrypt(map[string]any{"actualData": map[string]any{"name": "saw"}}, "another-key")
	require.NoError(t, err)
	body, err := json.Marshal(models.Envelope{Data: ciphertext})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")

	rr := serve(entry, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	resp := decodeErrorBody(t, rr)
	assert.Equal(t, ErrInvalidEnvelope.Error(), resp.Message)
	assert.Equal(t, apperr.CodeRequestInvalid, resp.Code)
}

func TestEnvelope_RejectionIsLogged(t *testing.T) {
	var buf bytes.Buffer
	_, entry := newTestPipeline(t, withEnvelope, func(o *Options) {
		o.Environment = models.EnvironmentProduction
		o.Logger = logger.NewLogger("test", logger.WithOutput(&buf))
	})
	buf.Reset()

	ciphertext, err := crypto.NewEnvelopeCodec().Encrypt(map[string]any{"actualData": map[string]any{"name": "saw"}}, "another-key")
	require.NoError(t, err)
	body, err := json.Marshal(models.Envelope{Data: ciphertext})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := serve(entry, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Contains(t, buf.String(), "payload envelope rejected")
	assert.Contains(t, buf.String(), crypto.ErrDecryptionFailed.Error())
}

func TestEnvelope_DataMustBeString(t *testing.T) {
	_, entry := newTestPipeline(t, withEnvelope)

	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"data":123}`))
	req.Header.Set("Content-Type", "application/json")

	rr := serve(entry, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apperr.CodeRequestInvalid, decodeErrorBody(t, rr).Code)
}

func TestEnvelope_DisabledInDevelopment(t *testing.T) {
	_, entry := newTestPipeline(t, withEnvelope, func(o *Options) { o.Environment = models.EnvironmentDevelopment })

	rr := serve(entry, httptest.NewRequest(http.MethodGet, "/items", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"id":1,"name":"hammer"}]`, rr.Body.String())
}

func TestEnvelope_DisabledWithoutKey(t *testing.T) {
	_, entry := newTestPipeline(t)

	rr := serve(entry, httptest.NewRequest(http.MethodGet, "/items", nil))
	assert.JSONEq(t, `[{"id":1,"name":"hammer"}]`, rr.Body.String())
}

func TestEnvelope_WrapIsPerRequest(t *testing.T) {
	_, entry := newTestPipeline(t, withEnvelope)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.Header.Set(randNumHeader, "5")
		plain := openResponse(t, serve(entry, req))
		assert.Equal(t, float64(5), plain["randNum"])

		// a request between them must not see the previous token
		plain = openResponse(t, serve(entry, httptest.NewRequest(http.MethodGet, "/items", nil)))
		assert.Equal(t, float64(0), plain["randNum"])
	}
}

func TestEnvelope_EncryptFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	codec := mock.NewMockEnvelopeCodec(ctrl)
	codec.EXPECT().
		Encrypt(gomock.Any(), testEncryptionKey).
		Return("", errors.New("cipher unavailable"))

	_, entry := newTestPipeline(t, withEnvelope, func(o *Options) { o.Codec = codec })

	rr := serve(entry, httptest.NewRequest(http.MethodGet, "/items", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, apperr.GenericMessage, decodeErrorBody(t, rr).Message)
}

func TestEnvelope_OpenIntoFailureUsesCodec(t *testing.T) {
	ctrl := gomock.NewController(t)
	codec := mock.NewMockEnvelopeCodec(ctrl)
	codec.EXPECT().
		OpenInto("ciphertext", testEncryptionKey, gomock.Any()).
		Return(crypto.ErrDecryptionFailed)

	_, entry := newTestPipeline(t, withEnvelope, func(o *Options) { o.Codec = codec })

	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"data":"ciphertext"}`))
	req.Header.Set("Content-Type", "application/json")

	rr := serve(entry, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, ErrInvalidEnvelope.Error(), decodeErrorBody(t, rr).Message)
}

func TestCorrelationToken(t *testing.T) {
	get := httptest.NewRequest(http.MethodGet, "/", nil)
	get.Header.Set(randNumHeader, "-12")
	assert.Equal(t, int64(-12), correlationToken(get))

	post := httptest.NewRequest(http.MethodPost, "/", nil)
	post.Header.Set(randNumHeader, "99")
	assert.Equal(t, 0, correlationToken(post), "the header is only read for GET")

	post = post.WithContext(utils.WithRandNum(post.Context(), "token"))
	assert.Equal(t, "token", correlationToken(post))
}

func TestIsJSONContainer(t *testing.T) {
	tests := map[string]bool{
		`{"a":1}`:    true,
		` [1,2] `:    true,
		`"string"`:   false,
		`42`:         false,
		``:           false,
		`{"broken":`: false,
	}
	for body, want := range tests {
		assert.Equal(t, want, isJSONContainer([]byte(body)), body)
	}
}
