package encryption

import "fmt"

// Encryptor seals and opens short secrets such as provider API keys.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// New returns the default Encryptor for passphrase.
func New(passphrase string) (Encryptor, error) {
	return NewChaCha20(passphrase)
}

// SealMap encrypts every value of m into a new map. A nil encryptor
// copies m unchanged.
func SealMap(enc Encryptor, m map[string]string) (map[string]string, error) {
	return transformMap(m, enc, func(v string) (string, error) { return enc.Encrypt(v) })
}

// OpenMap reverses SealMap.
func OpenMap(enc Encryptor, m map[string]string) (map[string]string, error) {
	return transformMap(m, enc, func(v string) (string, error) { return enc.Decrypt(v) })
}

func transformMap(m map[string]string, enc Encryptor, fn func(string) (string, error)) (map[string]string, error) {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if enc == nil || v == "" {
			out[k] = v
			continue
		}
		t, err := fn(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = t
	}
	return out, nil
}
