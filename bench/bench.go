// Package bench measures Mine/Validate throughput. Unlike the reference
// miner's file-scope accumulator globals, results are returned as a Result
// value so concurrent or repeated benchmark runs never share mutable state.
package bench

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	qyra "github.com/marcofortina/qyra-go"
	"github.com/marcofortina/qyra-go/core"
	"github.com/marcofortina/qyra-go/kem"
	"github.com/marcofortina/qyra-go/utils"
)

// Result reports one benchmark round's throughput for both puzzle
// operations.
type Result struct {
	Iterations         int
	MineElapsed        time.Duration
	ValidateElapsed    time.Duration
	MinesPerSecond     float64
	ValidatesPerSecond float64
}

// String formats r using the same order-of-magnitude suffixes as the
// reference miner's PrintSolutionsPerSecond (sol/s, KSol/s, MSol/s, GSol/s).
func (r Result) String() string {
	return fmt.Sprintf(
		"mine: %s (%d in %s), validate: %s (%d in %s)",
		formatRate(r.MinesPerSecond), r.Iterations, r.MineElapsed,
		formatRate(r.ValidatesPerSecond), r.Iterations, r.ValidateElapsed,
	)
}

func formatRate(rate float64) string {
	switch {
	case rate >= 1e9:
		return fmt.Sprintf("%.2f GSol/s", rate/1e9)
	case rate >= 1e6:
		return fmt.Sprintf("%.2f MSol/s", rate/1e6)
	case rate >= 1e3:
		return fmt.Sprintf("%.2f KSol/s", rate/1e3)
	default:
		return fmt.Sprintf("%.2f sol/s", rate)
	}
}

// Options configures a benchmark run. The zero value runs iterations rounds
// single-threaded, drawing key material and headers from the OS CSPRNG.
type Options struct {
	Iterations int
	Parallel   bool

	// Debug enables the puzzle's diagnostic sink for the duration of the
	// run, per the same SetDebug a caller could toggle directly.
	Debug bool

	// Seed, if non-nil, replaces the OS CSPRNG with a SHAKE256 stream
	// derived from Seed for both key generation and the per-round
	// header/nonce material, so a given seed always mines against the same
	// key pair and the same sequence of headers/nonces. Mine's own KEM
	// encapsulation still draws fresh randomness from the OS CSPRNG, so the
	// resulting solutions are not themselves reproducible; only the inputs
	// they are mined from are.
	Seed []byte
}

// Run mines and validates iterations independent puzzles using a fresh
// random header and nonce each round, returning the aggregate throughput.
func Run(iterations int, parallel bool) (Result, error) {
	return RunWithOptions(Options{Iterations: iterations, Parallel: parallel})
}

// RunWithOptions is the full form of Run, additionally supporting debug
// logging and seeded, reproducible key/header/nonce generation.
func RunWithOptions(opts Options) (Result, error) {
	var rng io.Reader = rand.Reader
	if opts.Seed != nil {
		rng = utils.NewShakeReader(opts.Seed)
	}

	kp, err := kem.GenerateKeyPairWithReader(rng)
	if err != nil {
		return Result{}, fmt.Errorf("bench: %w", err)
	}

	p := qyra.New()
	p.SetDebug(opts.Debug)
	if err := p.Initialize(kp.PublicKey, kp.SecretKey); err != nil {
		return Result{}, fmt.Errorf("bench: %w", err)
	}
	if opts.Parallel {
		if err := p.EnableParallelDFS(); err != nil {
			return Result{}, fmt.Errorf("bench: %w", err)
		}
	}

	type round struct {
		header, nonce []byte
		solution      qyra.Solution
	}

	mineStart := time.Now()
	rounds := make([]round, 0, opts.Iterations)
	for i := 0; i < opts.Iterations; i++ {
		header, err := randomBytes(rng, core.HeaderLen)
		if err != nil {
			return Result{}, fmt.Errorf("bench: %w", err)
		}
		nonce, err := randomBytes(rng, core.NonceLen)
		if err != nil {
			return Result{}, fmt.Errorf("bench: %w", err)
		}
		p.SetHeader(header)
		p.SetNonce(nonce)

		solution, err := p.Mine()
		if err != nil {
			return Result{}, fmt.Errorf("bench: mine round %d: %w", i, err)
		}
		rounds = append(rounds, round{header: header, nonce: nonce, solution: solution})
	}
	mineElapsed := time.Since(mineStart)

	// Validate re-derives the graph from a puzzle's current header and
	// nonce, so each round must restore the exact header/nonce it was
	// mined under before validating its solution.
	validateStart := time.Now()
	for i, r := range rounds {
		p.SetHeader(r.header)
		p.SetNonce(r.nonce)
		if err := p.Validate(r.solution); err != nil {
			return Result{}, fmt.Errorf("bench: validate round %d: %w", i, err)
		}
	}
	validateElapsed := time.Since(validateStart)

	return Result{
		Iterations:         opts.Iterations,
		MineElapsed:        mineElapsed,
		ValidateElapsed:    validateElapsed,
		MinesPerSecond:     float64(opts.Iterations) / mineElapsed.Seconds(),
		ValidatesPerSecond: float64(opts.Iterations) / validateElapsed.Seconds(),
	}, nil
}

func randomBytes(rng io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
