package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/envelope_codec_mock.go -package=mock

// EnvelopeCodec encrypts and decrypts structured payloads carried inside a
// payload envelope. It knows nothing about HTTP; the pipeline stages decide
// when it is applied.
//
// Round-trip law: for any JSON-serializable payload P and key K,
// Decrypt(Encrypt(P, K), K) is structurally equal to P.
type EnvelopeCodec interface {
	// Encrypt canonicalizes payload to JSON and encrypts it with a key
	// derived from key. The result is opaque base64 text.
	Encrypt(payload any, key string) (string, error)

	// Decrypt reverses Encrypt. It returns the parsed JSON value when the
	// plaintext is JSON and the raw plaintext string otherwise. Any failure
	// (wrong key, corrupt or tampered input) yields nil; Decrypt never
	// returns an error.
	Decrypt(ciphertext, key string) any

	// Open is Decrypt that also reports why decryption failed.
	Open(ciphertext, key string) (any, error)

	// OpenInto decrypts ciphertext and unmarshals the JSON plaintext into
	// target, which must be a non-nil pointer.
	OpenInto(ciphertext, key string, target any) error
}
