// Package kem implements a Kyber-768-style key encapsulation mechanism used
// to derive the shared secret that keys the puzzle's AES-256-CBC layer. It
// uses Kyber-768's parameters and byte sizes and follows the module-LWE
// construction: NTT-based polynomial arithmetic modulo q = 3329 with
// n = 256, a Fujisaki-Okamoto transform for CCA2 security, and implicit
// rejection on decapsulation failure so timing never reveals whether the
// ciphertext was valid.
//
// It is not byte-compatible with FIPS 203 ML-KEM-768: NTT-domain products
// are taken coefficient by coefficient (polyMul) rather than with degree-one
// base-case multiplication, key generation reads the matrix seed and noise
// directly from the random source, and the shared secret is
// SHAKE256(Kbar || H(ciphertext)). Keys and ciphertexts interoperate only
// with this package.
package kem

import (
	"golang.org/x/crypto/sha3"
	"fmt"
	"io"

	"github.com/marcofortina/qyra-go/core"
	"github.com/marcofortina/qyra-go/utils"
)

const (
	kyberK    = 3 // Module rank (Kyber-768).
	eta1      = 2 // CBD noise parameter for key generation and vector r.
	eta2      = 2 // CBD noise parameter for encryption noise e1, e2.
	du        = 10
	dv        = 4
	polyBytes = 384 // 256 coefficients packed at 12 bits each.
	seedLen   = 32
	zLen      = 32

	compBytesU = polyBytes * du / 12 // 320 bytes per polynomial row of u.
	compBytesV = polyBytes * dv / 12 // 128 bytes for v.
)

// KeyPair holds an encoded Kyber-768 public/secret key pair, sized exactly
// core.PKLen and core.SKLen bytes.
type KeyPair struct {
	PublicKey []byte
	SecretKey []byte
}

// GenerateKeyPair creates a fresh Kyber-768 key pair using the operating
// system's CSPRNG.
func GenerateKeyPair() (*KeyPair, error) {
	return GenerateKeyPairWithReader(utils.RandReader)
}

// GenerateKeyPairWithReader creates a Kyber-768 key pair drawing all
// randomness from rng, letting tests reproduce a known-answer key pair.
func GenerateKeyPairWithReader(rng io.Reader) (*KeyPair, error) {
	seed := make([]byte, seedLen)
	if _, err := io.ReadFull(rng, seed); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrKemFailure, err)
	}

	s := make([][]int16, kyberK)
	e := make([][]int16, kyberK)
	for i := 0; i < kyberK; i++ {
		var err error
		if s[i], err = sampleCBD(rng, eta1); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrKemFailure, err)
		}
		if e[i], err = sampleCBD(rng, eta1); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrKemFailure, err)
		}
	}

	matA := expandMatrix(seed, kyberK)

	sNTT := make([][]int16, kyberK)
	for i := range s {
		sNTT[i] = ntt(s[i])
	}

	t := make([][]int16, kyberK)
	for i := 0; i < kyberK; i++ {
		acc := make([]int16, polyN)
		for j := 0; j < kyberK; j++ {
			acc = polyAdd(acc, polyMul(matA[i][j], sNTT[j]))
		}
		t[i] = polyAdd(acc, ntt(e[i]))
	}

	pk := make([]byte, 0, core.PKLen)
	for i := 0; i < kyberK; i++ {
		pk = append(pk, encodePoly(t[i])...)
	}
	pk = append(pk, seed...)

	skS := make([]byte, 0, kyberK*polyBytes)
	for i := 0; i < kyberK; i++ {
		skS = append(skS, encodePoly(sNTT[i])...)
	}

	hpk := hashH(pk)
	z := make([]byte, zLen)
	if _, err := io.ReadFull(rng, z); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrKemFailure, err)
	}

	sk := make([]byte, 0, core.SKLen)
	sk = append(sk, skS...)
	sk = append(sk, pk...)
	sk = append(sk, hpk[:]...)
	sk = append(sk, z...)

	if len(pk) != core.PKLen || len(sk) != core.SKLen {
		return nil, core.ErrKemFailure
	}
	return &KeyPair{PublicKey: pk, SecretKey: sk}, nil
}

// Encapsulate derives a shared secret and its encapsulation under pk. It
// implements the Fujisaki-Okamoto transform: a random 32-byte message m is
// hashed together with H(pk) to derive both the encryption randomness and
// the shared secret, binding the two so decapsulation can verify the
// ciphertext by re-encrypting.
func Encapsulate(pk []byte) (ciphertext, sharedSecret []byte, err error) {
	return EncapsulateWithReader(pk, utils.RandReader)
}

// EncapsulateWithReader performs encapsulation, drawing the message m from
// rng. Everything else is deterministic given m and pk.
func EncapsulateWithReader(pk []byte, rng io.Reader) ([]byte, []byte, error) {
	if len(pk) != core.PKLen {
		return nil, nil, core.ErrNullOrMissingKey
	}

	m := make([]byte, 32)
	if _, err := io.ReadFull(rng, m); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrKemFailure, err)
	}

	hpk := hashH(pk)
	kbar, coins := hashG(m, hpk[:])

	ct, err := encryptCore(pk, m, coins[:])
	if err != nil {
		return nil, nil, err
	}

	ss := kdf(kbar[:], hashH(ct))
	return ct, ss, nil
}

// Decapsulate recovers the shared secret bound to ciphertext, using the
// standard implicit-rejection FO transform: it decrypts, re-derives the
// coins, re-encrypts, and only returns the real shared secret if the
// re-encryption reproduces ciphertext exactly. On mismatch it returns a
// pseudo-random secret derived from sk's private seed z, so callers cannot
// distinguish a corrupted ciphertext from a valid one by timing or output
// shape.
func Decapsulate(ciphertext, sk []byte) ([]byte, error) {
	if len(sk) != core.SKLen {
		return nil, core.ErrNullOrMissingKey
	}
	if len(ciphertext) != core.CTLen {
		return nil, fmt.Errorf("%w: ciphertext must be %d bytes", core.ErrKemFailure, core.CTLen)
	}

	skS := sk[:kyberK*polyBytes]
	pk := sk[kyberK*polyBytes : kyberK*polyBytes+core.PKLen]
	hpk := sk[kyberK*polyBytes+core.PKLen : kyberK*polyBytes+core.PKLen+32]
	z := sk[kyberK*polyBytes+core.PKLen+32:]

	m, err := decryptCore(skS, ciphertext)
	if err != nil {
		return nil, err
	}

	kbar, coins := hashG(m, hpk)
	ctPrime, err := encryptCore(pk, m, coins[:])
	if err != nil {
		return nil, err
	}

	ctHash := hashH(ciphertext)
	if utils.ConstantTimeEqual(ctPrime, ciphertext) {
		return kdf(kbar[:], ctHash), nil
	}
	return kdf(z, ctHash), nil
}

// encryptCore is the deterministic CPA-secure Kyber.Enc: given a public key,
// a 32-byte message, and 32 bytes of coins, it derives the encryption
// randomness r/e1/e2 from a SHAKE256 stream seeded with coins and returns
// the compressed ciphertext u||v.
func encryptCore(pk, msg, coins []byte) ([]byte, error) {
	t := make([][]int16, kyberK)
	for i := 0; i < kyberK; i++ {
		t[i] = decodePoly(pk[i*polyBytes : (i+1)*polyBytes])
	}
	seed := pk[kyberK*polyBytes:]
	matA := expandMatrix(seed, kyberK)

	stream := sha3.NewShake256()
	stream.Write(coins)

	r := make([][]int16, kyberK)
	e1 := make([][]int16, kyberK)
	for i := 0; i < kyberK; i++ {
		var err error
		if r[i], err = sampleCBD(stream, eta1); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrKemFailure, err)
		}
		if e1[i], err = sampleCBD(stream, eta2); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrKemFailure, err)
		}
	}
	e2, err := sampleCBD(stream, eta2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrKemFailure, err)
	}

	rNTT := make([][]int16, kyberK)
	for i := range r {
		rNTT[i] = ntt(r[i])
	}

	u := make([][]int16, kyberK)
	for i := 0; i < kyberK; i++ {
		acc := make([]int16, polyN)
		for j := 0; j < kyberK; j++ {
			acc = polyAdd(acc, polyMul(matA[j][i], rNTT[j]))
		}
		u[i] = polyAdd(inverseNTT(acc), e1[i])
	}

	vAcc := make([]int16, polyN)
	for j := 0; j < kyberK; j++ {
		vAcc = polyAdd(vAcc, inverseNTT(polyMul(t[j], rNTT[j])))
	}
	v := polyAdd(polyAdd(vAcc, e2), encodeMessage(msg))

	ct := make([]byte, 0, core.CTLen)
	for i := 0; i < kyberK; i++ {
		ct = append(ct, compressPoly(u[i], du)...)
	}
	ct = append(ct, compressPoly(v, dv)...)
	return ct, nil
}

// decryptCore is the deterministic Kyber.Dec: given the NTT-domain secret
// vector s (packed in skS) and a ciphertext, it recovers the 32-byte
// message. The caller (Decapsulate) is responsible for the FO
// re-encryption check; this function never fails on malformed noise, only
// on structurally wrong input sizes.
func decryptCore(skS, ciphertext []byte) ([]byte, error) {
	if len(skS) != kyberK*polyBytes {
		return nil, fmt.Errorf("%w: secret key vector has the wrong size", core.ErrKemFailure)
	}
	if len(ciphertext) != core.CTLen {
		return nil, fmt.Errorf("%w: ciphertext has the wrong size", core.ErrKemFailure)
	}

	s := make([][]int16, kyberK)
	for i := 0; i < kyberK; i++ {
		s[i] = decodePoly(skS[i*polyBytes : (i+1)*polyBytes])
	}

	u := make([][]int16, kyberK)
	for i := 0; i < kyberK; i++ {
		u[i] = decompressPoly(ciphertext[i*compBytesU:(i+1)*compBytesU], du)
	}
	v := decompressPoly(ciphertext[kyberK*compBytesU:], dv)

	stu := make([]int16, polyN)
	for j := 0; j < kyberK; j++ {
		stu = polyAdd(stu, inverseNTT(polyMul(s[j], ntt(u[j]))))
	}
	return decodeMessage(polySub(v, stu)), nil
}

// hashH is the FO transform's H: SHA3-256 over the concatenation of data.
func hashH(data ...[]byte) [32]byte {
	h := sha3.New256()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// hashG is the FO transform's G: SHA3-512 over the concatenation of data,
// split into two 32-byte halves (Kbar, coins).
func hashG(data ...[]byte) (kbar, coins [32]byte) {
	h := sha3.New512()
	for _, d := range data {
		h.Write(d)
	}
	var full [64]byte
	h.Sum(full[:0])
	copy(kbar[:], full[:32])
	copy(coins[:], full[32:])
	return
}

// kdf derives the final 32-byte shared secret from Kbar (or z on implicit
// rejection) and H(ciphertext), binding the secret to the exact ciphertext
// that was exchanged.
func kdf(kbar []byte, ctHash [32]byte) []byte {
	input := append(append([]byte{}, kbar...), ctHash[:]...)
	return utils.Shake256(input, core.SSLen)
}
