package pgp

import (
	"errors"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

const messageBlockType = "PGP MESSAGE"

var ErrInvalidMessage = errors.New("invalid pgp message")

// MessageValidator checks that case details are an armored, encrypted
// OpenPGP message. It does not decrypt.
type MessageValidator struct{}

func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

func (MessageValidator) ValidateMessage(armored string) error {
	block, err := armor.Decode(strings.NewReader(armored))
	if err != nil {
		return ErrInvalidMessage
	}
	if block.Type != messageBlockType {
		return ErrInvalidMessage
	}

	p, err := packet.NewReader(block.Body).Next()
	if err != nil {
		return ErrInvalidMessage
	}
	switch p.(type) {
	case *packet.EncryptedKey, *packet.SymmetricKeyEncrypted, *packet.SymmetricallyEncrypted:
		return nil
	default:
		return ErrInvalidMessage
	}
}
