// Command runner loads a ProofInput produced by blob-tool and re-executes
// the deterministic verification chain locally, the same chain a zkVM guest
// would commit to. It is the offline counterpart to prover.MockBackend: no
// proof is produced, only the pass/fail verdict and the committed public
// outputs.
//
// Usage:
//
//	runner --in <path>
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/eqlabs/eq-service/guest"
	"github.com/eqlabs/eq-service/inclusion"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns an exit code:
//
//	0 success
//	1 argument error (usage or flag parsing)
//	2 runtime error (input unreadable or malformed, or verification failed)
func run(args []string) int {
	fs := flag.NewFlagSet("runner", flag.ContinueOnError)
	in := fs.String("in", "proof_input.json", "path to the ProofInput JSON file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	raw, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "runner: read", *in, ":", err)
		return 2
	}

	var input inclusion.ProofInput
	if err := json.Unmarshal(raw, &input); err != nil {
		fmt.Fprintln(os.Stderr, "runner: parse proof input:", err)
		return 2
	}

	output, err := guest.Verify(&input)
	if err != nil {
		fmt.Fprintln(os.Stderr, "runner: verification failed:", err)
		return 2
	}

	fmt.Printf("keccak_hash: %s\n", hex.EncodeToString(output.KeccakHash[:]))
	fmt.Printf("data_root:   %s\n", hex.EncodeToString(output.DataRoot[:]))
	return 0
}
