package kem

import (
	"bytes"
	"testing"

	"github.com/marcofortina/qyra-go/core"
)

func TestKeyPairSizes(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	if len(kp.PublicKey) != core.PKLen {
		t.Errorf("public key length = %d, want %d", len(kp.PublicKey), core.PKLen)
	}
	if len(kp.SecretKey) != core.SKLen {
		t.Errorf("secret key length = %d, want %d", len(kp.SecretKey), core.SKLen)
	}
}

func TestEncapsulateDecapsulateRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}

	ct, ss1, err := Encapsulate(kp.PublicKey)
	if err != nil {
		t.Fatalf("Encapsulate failed: %v", err)
	}
	if len(ct) != core.CTLen {
		t.Fatalf("ciphertext length = %d, want %d", len(ct), core.CTLen)
	}
	if len(ss1) != core.SSLen {
		t.Fatalf("shared secret length = %d, want %d", len(ss1), core.SSLen)
	}

	ss2, err := Decapsulate(ct, kp.SecretKey)
	if err != nil {
		t.Fatalf("Decapsulate failed: %v", err)
	}
	if !bytes.Equal(ss1, ss2) {
		t.Fatal("decapsulated shared secret does not match encapsulated one")
	}
}

func TestDecapsulateImplicitRejection(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	ct, ss1, err := Encapsulate(kp.PublicKey)
	if err != nil {
		t.Fatalf("Encapsulate failed: %v", err)
	}

	tampered := make([]byte, len(ct))
	copy(tampered, ct)
	tampered[0] ^= 0xFF

	ss2, err := Decapsulate(tampered, kp.SecretKey)
	if err != nil {
		t.Fatalf("Decapsulate on tampered ciphertext returned an error instead of an implicit-reject secret: %v", err)
	}
	if len(ss2) != core.SSLen {
		t.Fatalf("rejected shared secret length = %d, want %d", len(ss2), core.SSLen)
	}
	if bytes.Equal(ss1, ss2) {
		t.Fatal("tampered ciphertext produced the original shared secret")
	}

	// Implicit rejection must still be deterministic for the same tampered
	// ciphertext and secret key.
	ss3, err := Decapsulate(tampered, kp.SecretKey)
	if err != nil {
		t.Fatalf("second Decapsulate on tampered ciphertext failed: %v", err)
	}
	if !bytes.Equal(ss2, ss3) {
		t.Fatal("implicit rejection is not deterministic")
	}
}

func TestEncapsulateRejectsWrongPublicKeySize(t *testing.T) {
	_, _, err := Encapsulate(make([]byte, core.PKLen-1))
	if err == nil {
		t.Fatal("expected an error for a short public key")
	}
}

func TestDecapsulateRejectsWrongSizes(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	if _, err := Decapsulate(make([]byte, core.CTLen), make([]byte, core.SKLen-1)); err == nil {
		t.Fatal("expected an error for a short secret key")
	}
	if _, err := Decapsulate(make([]byte, core.CTLen-1), kp.SecretKey); err == nil {
		t.Fatal("expected an error for a short ciphertext")
	}
}
