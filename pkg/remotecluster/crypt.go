package remotecluster

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// NewMasker creates a masker encrypting to and decrypting with the given age X25519 identity.
func NewMasker(identity string) (*Masker, error) {
	id, err := age.ParseX25519Identity(strings.TrimSpace(identity))
	if err != nil {
		return nil, fmt.Errorf("failed to parse masking identity: %v", err)
	}
	return &Masker{identity: id}, nil
}

// Masker encrypts values of masked parameters so they are not stored in plain text.
type Masker struct {
	identity *age.X25519Identity
}

// Mask encrypts value into an ASCII armored age file.
func (m Masker) Mask(value string) (string, error) {
	var buf bytes.Buffer
	armorWriter := armor.NewWriter(&buf)

	w, err := age.Encrypt(armorWriter, m.identity.Recipient())
	if err != nil {
		return "", err
	}
	if _, err := io.WriteString(w, value); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	if err := armorWriter.Close(); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// Unmask decrypts a value encrypted by Mask. Values which are not armored are returned as is as
// they were stored before their parameter was masked.
func (m Masker) Unmask(value string) (string, error) {
	if !IsMasked(value) {
		return value, nil
	}

	r, err := age.Decrypt(armor.NewReader(strings.NewReader(value)), m.identity)
	if err != nil {
		return "", fmt.Errorf("failed to unmask value: %v", err)
	}

	plain, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to unmask value: %v", err)
	}
	return string(plain), nil
}

func IsMasked(value string) bool {
	return strings.HasPrefix(value, armor.Header)
}
