// Command qyra-keygen generates a Kyber-768 key pair and prints it as
// hex-encoded public/secret key strings, or as a Go source snippet callers
// can paste directly into their program.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	qyra "github.com/marcofortina/qyra-go"
	"github.com/marcofortina/qyra-go/core"
	"github.com/marcofortina/qyra-go/kem"
	"github.com/marcofortina/qyra-go/utils"
)

func main() {
	goSnippet := flag.Bool("go", false, "print the key pair as a Go source snippet instead of hex")
	fingerprint := flag.Bool("fingerprint", false, "print a SHA3-256 fingerprint of the public key")
	verbose := flag.Bool("verbose", false, "log mine/validate failure diagnostics to stderr")
	dump := flag.Bool("dump", false, "mine one sample puzzle with the new key pair and dump its adjacency matrix and path nodes to stderr")
	flag.Parse()

	kp, err := kem.GenerateKeyPair()
	if err != nil {
		fmt.Fprintf(os.Stderr, "qyra-keygen: %v\n", err)
		os.Exit(1)
	}

	if *goSnippet {
		printGoSnippet(kp.PublicKey, kp.SecretKey)
	} else {
		fmt.Println("Never share the secret key with anyone.")
		fmt.Println()
		fmt.Printf("public_key:  %s\n", hex.EncodeToString(kp.PublicKey))
		fmt.Printf("secret_key:  %s\n", hex.EncodeToString(kp.SecretKey))
	}

	if *fingerprint {
		sum := utils.SHA3256(kp.PublicKey)
		fmt.Printf("fingerprint: %s\n", hex.EncodeToString(sum))
	}

	if *dump {
		if err := dumpSample(kp.PublicKey, kp.SecretKey, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "qyra-keygen: dump: %v\n", err)
			os.Exit(1)
		}
	}
}

func printGoSnippet(publicKey, secretKey []byte) {
	fmt.Println("// Never share the secret key with anyone.")
	fmt.Println()
	printByteSlice("publicKey", publicKey)
	fmt.Println()
	printByteSlice("secretKey", secretKey)
}

func printByteSlice(name string, data []byte) {
	fmt.Printf("var %s = []byte{\n", name)
	var line strings.Builder
	for i, b := range data {
		fmt.Fprintf(&line, "0x%02x,", b)
		if (i+1)%8 == 0 || i == len(data)-1 {
			fmt.Printf("\t%s\n", line.String())
			line.Reset()
		} else {
			line.WriteByte(' ')
		}
	}
	fmt.Println("}")
}

// dumpSample mines one puzzle against the freshly generated key pair and
// writes its adjacency matrix and path nodes to stderr. It never runs from
// inside Mine or Validate; it exists purely so -dump exercises the
// diagnostic sink on a real key pair before it is ever used elsewhere.
func dumpSample(publicKey, secretKey []byte, verbose bool) error {
	header := make([]byte, core.HeaderLen)
	nonce := make([]byte, core.NonceLen)
	if _, err := io.ReadFull(rand.Reader, header); err != nil {
		return err
	}
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}

	p := qyra.New()
	p.SetDebug(verbose)
	if err := p.Initialize(publicKey, secretKey); err != nil {
		return err
	}
	p.SetHeader(header)
	p.SetNonce(nonce)

	if _, err := p.Mine(); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "--- adjacency matrix dump ---")
	if err := p.DumpMatrix(os.Stderr); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "--- path node dump ---")
	return p.DumpNodes(os.Stderr)
}
