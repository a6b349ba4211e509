// Command qyra-bench measures Mine/Validate throughput over a number of
// rounds and prints a summary in the same order-of-magnitude units as the
// reference miner's benchmark tool.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	qyra "github.com/marcofortina/qyra-go"
	"github.com/marcofortina/qyra-go/bench"
	"github.com/marcofortina/qyra-go/core"
	"github.com/marcofortina/qyra-go/kem"
)

func main() {
	iterations := flag.Int("iterations", 10, "number of mine/validate rounds per benchmark")
	rounds := flag.Int("rounds", 1, "number of independent benchmark rounds to run")
	parallel := flag.Bool("parallel", true, "use one DFS worker per logical CPU")
	verbose := flag.Bool("verbose", false, "log mine/validate failure diagnostics to stderr")
	seed := flag.String("seed", "", "hex-encoded seed for reproducible key material and headers (default: OS CSPRNG)")
	dump := flag.Bool("dump", false, "after benchmarking, mine one extra sample puzzle and dump its adjacency matrix and path nodes to stderr")
	flag.Parse()

	if *iterations < 1 {
		fmt.Fprintln(os.Stderr, "qyra-bench: -iterations must be at least 1")
		os.Exit(1)
	}

	var seedBytes []byte
	if *seed != "" {
		var err error
		seedBytes, err = hex.DecodeString(*seed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "qyra-bench: -seed: %v\n", err)
			os.Exit(1)
		}
	}

	opts := bench.Options{
		Iterations: *iterations,
		Parallel:   *parallel,
		Debug:      *verbose,
		Seed:       seedBytes,
	}

	var totalMines, totalValidates float64
	for i := 0; i < *rounds; i++ {
		result, err := bench.RunWithOptions(opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "qyra-bench: round %d: %v\n", i+1, err)
			os.Exit(1)
		}
		fmt.Printf("round %d: %s\n", i+1, result)
		totalMines += result.MinesPerSecond
		totalValidates += result.ValidatesPerSecond
	}

	if *rounds > 1 {
		fmt.Println("--------------------------------------------------")
		fmt.Printf("average mine:     %.2f sol/s\n", totalMines/float64(*rounds))
		fmt.Printf("average validate: %.2f sol/s\n", totalValidates/float64(*rounds))
	}

	if *dump {
		if err := dumpSample(*verbose); err != nil {
			fmt.Fprintf(os.Stderr, "qyra-bench: dump: %v\n", err)
			os.Exit(1)
		}
	}
}

// dumpSample mines one extra puzzle outside the timed benchmark loop and
// writes its adjacency matrix and path nodes to stderr. It never runs from
// inside Mine or Validate; it is strictly a post-hoc diagnostic.
func dumpSample(verbose bool) error {
	kp, err := kem.GenerateKeyPair()
	if err != nil {
		return err
	}

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
	if err := p.Initialize(kp.PublicKey, kp.SecretKey); err != nil {
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
