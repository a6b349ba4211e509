// Package aescbc implements the AES-256-CBC symmetric layer that protects
// the puzzle's header||nonce preimage under the KEM's shared secret. There
// is no ecosystem CBC+PKCS7 helper among the retrieved dependencies, so
// this wraps the standard library's crypto/aes and crypto/cipher directly,
// mirroring the OpenSSL EVP calls of the reference miner's crypto.cpp.
package aescbc

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/marcofortina/qyra-go/core"
	"github.com/marcofortina/qyra-go/utils"
)

// Encrypt pads message with PKCS#7, generates a fresh random IV, and
// returns the AES-256-CBC ciphertext alongside the IV that produced it.
// key must be exactly 32 bytes (core.SSLen), matching the KEM's shared
// secret.
func Encrypt(key, message []byte) (enc, iv []byte, err error) {
	if len(key) != core.SSLen {
		return nil, nil, fmt.Errorf("%w: key must be %d bytes", core.ErrCipherFailure, core.SSLen)
	}
	if len(message) == 0 {
		return nil, nil, core.ErrEmptyInput
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrCipherFailure, err)
	}

	iv, err = utils.SecureRandomBytes(core.IVLen)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrCipherFailure, err)
	}

	padded := pkcs7Pad(message, block.BlockSize())
	enc = make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(enc, padded)

	return enc, iv, nil
}

// Decrypt reverses Encrypt: it decrypts enc under key and iv, then strips
// and validates the PKCS#7 padding.
func Decrypt(key, enc, iv []byte) ([]byte, error) {
	if len(key) != core.SSLen {
		return nil, fmt.Errorf("%w: key must be %d bytes", core.ErrCipherFailure, core.SSLen)
	}
	if len(iv) != core.IVLen {
		return nil, core.ErrInvalidIvLength
	}
	if len(enc) == 0 {
		return nil, core.ErrEmptyInput
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCipherFailure, err)
	}
	if len(enc)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not a multiple of the block size", core.ErrCipherFailure)
	}

	padded := make([]byte, len(enc))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(padded, enc)

	return pkcs7Unpad(padded, block.BlockSize())
}

// pkcs7Pad appends padding bytes per RFC 5652: each pad byte's value equals
// the number of pad bytes added, and a full block of padding is added when
// the input is already block-aligned.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// pkcs7Unpad validates and strips PKCS#7 padding, rejecting malformed
// padding rather than silently truncating.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: invalid padded length", core.ErrCipherFailure)
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, fmt.Errorf("%w: invalid PKCS#7 padding", core.ErrCipherFailure)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("%w: invalid PKCS#7 padding", core.ErrCipherFailure)
		}
	}
	return data[:len(data)-padLen], nil
}
