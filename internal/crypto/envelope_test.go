package crypto

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/MKhiriev/go-service-bootstrap/models"
)

const testKey = "envelope-test-key"

func TestEnvelope_RoundTripObject(t *testing.T) {
	codec := NewEnvelopeCodec()

	payload := map[string]any{
		"name":   "alice",
		"age":    float64(42),
		"admin":  true,
		"tags":   []any{"a", "b"},
		"nested": map[string]any{"k": nil},
	}

	ciphertext, err := codec.Encrypt(payload, testKey)
	require.NoError(t, err)
	assert.NotContains(t, ciphertext, "alice")

	assert.Equal(t, payload, codec.Decrypt(ciphertext, testKey))
}

func TestEnvelope_EncryptIsRandomized(t *testing.T) {
	codec := NewEnvelopeCodec()

	c1, err := codec.Encrypt(map[string]any{"a": 1}, testKey)
	require.NoError(t, err)
	c2, err := codec.Encrypt(map[string]any{"a": 1}, testKey)
	require.NoError(t, err)

	assert.NotEqual(t, c1, c2, "salt and nonce must differ per message")
}

func TestEnvelope_DecryptWrongKeyReturnsNil(t *testing.T) {
	codec := NewEnvelopeCodec()

	ciphertext, err := codec.Encrypt(map[string]any{"a": "b"}, testKey)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		assert.Nil(t, codec.Decrypt(ciphertext, "another-key"))
	})

	_, err = codec.Open(ciphertext, "another-key")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestEnvelope_DecryptCorruptInput(t *testing.T) {
	codec := NewEnvelopeCodec()

	tests := []struct {
		name       string
		ciphertext string
		wantErrIs  error
	}{
		{name: "not base64", ciphertext: "%%%not-base64%%%"},
		{name: "empty", ciphertext: "", wantErrIs: ErrCiphertextTooShort},
		{name: "shorter than salt", ciphertext: base64.StdEncoding.EncodeToString([]byte("short")), wantErrIs: ErrCiphertextTooShort},
		{name: "salt without nonce", ciphertext: base64.StdEncoding.EncodeToString(make([]byte, 20)), wantErrIs: ErrCiphertextTooShort},
		{name: "random bytes", ciphertext: base64.StdEncoding.EncodeToString(make([]byte, 64)), wantErrIs: ErrDecryptionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, codec.Decrypt(tt.ciphertext, testKey))

			_, err := codec.Open(tt.ciphertext, testKey)
			require.Error(t, err)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			}
		})
	}
}

func TestEnvelope_TamperedCiphertext(t *testing.T) {
	codec := NewEnvelopeCodec()

	ciphertext, err := codec.Encrypt("secret", testKey)
	require.NoError(t, err)

	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	require.NoError(t, err)
	blob[len(blob)-1] ^= 0xFF

	assert.Nil(t, codec.Decrypt(base64.StdEncoding.EncodeToString(blob), testKey))
}

func TestEnvelope_DecryptNonObjectPlaintext(t *testing.T) {
	codec := NewEnvelopeCodec()

	// a JSON string payload decrypts back to the same Go string
	ciphertext, err := codec.Encrypt("plain text", testKey)
	require.NoError(t, err)
	assert.Equal(t, "plain text", codec.Decrypt(ciphertext, testKey))

	raw, err := codec.Encrypt(json.RawMessage(`123`), testKey)
	require.NoError(t, err)
	assert.Equal(t, float64(123), codec.Decrypt(raw, testKey))
}

func TestEnvelope_DecryptRawTextPlaintext(t *testing.T) {
	codec := NewEnvelopeCodec()

	// seal a plaintext that is not JSON, bypassing Encrypt
	salt := make([]byte, envelopeSaltSize)
	gcm, err := newEnvelopeAEAD(testKey, salt)
	require.NoError(t, err)
	nonce := make([]byte, gcm.NonceSize())

	blob := append(append([]byte{}, salt...), nonce...)
	blob = gcm.Seal(blob, nonce, []byte("not json at all"), nil)

	assert.Equal(t, "not json at all", codec.Decrypt(base64.StdEncoding.EncodeToString(blob), testKey))
}

func TestEnvelope_EncryptUnmarshalablePayload(t *testing.T) {
	codec := NewEnvelopeCodec()

	_, err := codec.Encrypt(map[string]any{"ch": make(chan int)}, testKey)
	assert.Error(t, err)
}

func TestEnvelope_OpenIntoRequestEnvelope(t *testing.T) {
	codec := NewEnvelopeCodec()

	ciphertext, err := codec.Encrypt(map[string]any{
		"actualData": map[string]any{"id": 12345678901234567},
		"randNum":    7,
	}, testKey)
	require.NoError(t, err)

	var req models.EnvelopeRequest
	require.NoError(t, codec.OpenInto(ciphertext, testKey, &req))

	// actualData keeps its exact textual form
	assert.JSONEq(t, `{"id":12345678901234567}`, string(req.ActualData))
	assert.Equal(t, float64(7), req.RandNum)
}

func TestEnvelope_OpenIntoWrongKey(t *testing.T) {
	codec := NewEnvelopeCodec()

	ciphertext, err := codec.Encrypt(map[string]any{"a": 1}, testKey)
	require.NoError(t, err)

	var target map[string]any
	assert.ErrorIs(t, codec.OpenInto(ciphertext, "nope", &target), ErrDecryptionFailed)
}

// TestEnvelope_RoundTripProperty checks Decrypt(Encrypt(P, K), K) == P for
// generated JSON objects and keys.
func TestEnvelope_RoundTripProperty(t *testing.T) {
	codec := NewEnvelopeCodec()

	rapid.Check(t, func(t *rapid.T) {
		key := rapid.StringN(1, 64, -1).Draw(t, "key")
		strs := rapid.MapOf(rapid.StringMatching(`[a-z]{1,8}`), rapid.StringMatching(`[ -~]{0,24}`)).Draw(t, "strings")
		nums := rapid.SliceOf(rapid.Int32()).Draw(t, "numbers")
		flag := rapid.Bool().Draw(t, "flag")

		payload := map[string]any{"flag": flag}
		for k, v := range strs {
			payload["s_"+k] = v
		}
		list := make([]any, 0, len(nums))
		for _, n := range nums {
			list = append(list, float64(n))
		}
		payload["numbers"] = list

		ciphertext, err := codec.Encrypt(payload, key)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}

		assert.Equal(t, payload, codec.Decrypt(ciphertext, key))
	})
}

// TestEnvelope_WrongKeyProperty checks that any other key yields the nil
// sentinel without panicking.
func TestEnvelope_WrongKeyProperty(t *testing.T) {
	codec := NewEnvelopeCodec()

	rapid.Check(t, func(t *rapid.T) {
		key := rapid.StringN(1, 32, -1).Draw(t, "key")
		other := rapid.StringN(1, 32, -1).Filter(func(s string) bool { return s != key }).Draw(t, "other")
		value := rapid.StringMatching(`[ -~]{0,32}`).Draw(t, "value")

		ciphertext, err := codec.Encrypt(map[string]any{"v": value}, key)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}

		if got := codec.Decrypt(ciphertext, other); got != nil {
			t.Fatalf("expected nil for wrong key, got %v", got)
		}
	})
}
