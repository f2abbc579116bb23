// Command blob-tool fetches a blob and its DA proofs from a Celestia-style
// light node and writes the assembled ProofInput to disk as JSON, ready to
// be handed to the standalone runner or a zkVM guest.
//
// Usage:
//
//	blob-tool --height <n> --namespace <hex> --commitment <hex> [--da <ws-addr>] [--out <path>]
//
// Flags:
//
//	--height      Block height the blob was included at (required)
//	--namespace   29-byte namespace, hex-encoded (required)
//	--commitment  32-byte blob commitment, hex-encoded (required)
//	--da          DA node WebSocket RPC address (default: ws://localhost:26658)
//	--out         Output path for the assembled ProofInput (default: proof_input.json)
//	--header-out  Optional output path for the header field tree (data_hash proof)
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/eqlabs/eq-service/daclient"
	"github.com/eqlabs/eq-service/headertree"
	"github.com/eqlabs/eq-service/inclusion"
	"github.com/eqlabs/eq-service/merkle"
	"github.com/eqlabs/eq-service/nmt"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

type config struct {
	Height     uint64
	Namespace  string
	Commitment string
	DAAddr     string
	Out        string
	HeaderOut  string
}

// headerTreeArtifact is the JSON shape written to --header-out: enough for a
// caller to bind the block hash to data_root without re-deriving the tree.
type headerTreeArtifact struct {
	Root          []byte             `json:"root"`
	DataHashProof *merkle.RangeProof `json:"data_hash_proof"`
	DataHash      [32]byte           `json:"data_hash"`
}

// run is the actual entry point, returning an exit code:
//
//	0 success
//	1 usage or flag parsing error
//	2 DA fetch or proof-input assembly error
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		return code
	}

	namespace, commitment, err := parseIdentifiers(cfg.Namespace, cfg.Commitment)
	if err != nil {
		fmt.Fprintln(os.Stderr, "blob-tool:", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := daclient.Dial(ctx, cfg.DAAddr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "blob-tool: dial:", err)
		return 2
	}
	defer client.Close()

	input, header, err := fetchProofInput(ctx, client, cfg.Height, namespace, commitment)
	if err != nil {
		fmt.Fprintln(os.Stderr, "blob-tool:", err)
		return 2
	}

	out, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "blob-tool: marshal proof input:", err)
		return 2
	}
	if err := os.WriteFile(cfg.Out, out, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "blob-tool: write", cfg.Out, ":", err)
		return 2
	}
	fmt.Printf("wrote %s (%d bytes)\n", cfg.Out, len(out))

	if cfg.HeaderOut != "" {
		tree, err := headertree.Build(header)
		if err != nil {
			fmt.Fprintln(os.Stderr, "blob-tool: header field tree:", err)
			return 2
		}
		artifact := headerTreeArtifact{Root: tree.Root, DataHashProof: tree.DataHashProof, DataHash: header.DataHash}
		hout, err := json.MarshalIndent(artifact, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "blob-tool: marshal header field tree:", err)
			return 2
		}
		if err := os.WriteFile(cfg.HeaderOut, hout, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "blob-tool: write", cfg.HeaderOut, ":", err)
			return 2
		}
		fmt.Printf("wrote %s (%d bytes)\n", cfg.HeaderOut, len(hout))
	}

	return 0
}

func parseIdentifiers(namespaceHex, commitmentHex string) (nmt.ID, inclusion.Commitment, error) {
	var namespace nmt.ID
	nsBytes, err := hex.DecodeString(namespaceHex)
	if err != nil {
		return namespace, inclusion.Commitment{}, fmt.Errorf("invalid namespace hex: %w", err)
	}
	if len(nsBytes) != nmt.IDSize {
		return namespace, inclusion.Commitment{}, fmt.Errorf("namespace must be %d bytes, got %d", nmt.IDSize, len(nsBytes))
	}
	copy(namespace[:], nsBytes)

	commitment, err := inclusion.ParseCommitment(commitmentHex)
	if err != nil {
		return namespace, commitment, err
	}
	return namespace, commitment, nil
}

func fetchProofInput(ctx context.Context, client daclient.Client, height uint64, namespace nmt.ID, commitment inclusion.Commitment) (*inclusion.ProofInput, *inclusion.ExtendedHeader, error) {
	header, err := client.HeaderGetByHeight(ctx, height)
	if err != nil {
		return nil, nil, fmt.Errorf("header.GetByHeight: %w", err)
	}
	blob, err := client.BlobGet(ctx, height, namespace, commitment)
	if err != nil {
		return nil, nil, fmt.Errorf("blob.Get: %w", err)
	}
	proofs, err := client.BlobGetProof(ctx, height, namespace, commitment)
	if err != nil {
		return nil, nil, fmt.Errorf("blob.GetProof: %w", err)
	}
	input, err := inclusion.BuildProofInput(blob, header, proofs)
	if err != nil {
		return nil, nil, err
	}
	return input, header, nil
}

func parseFlags(args []string) (config, bool, int) {
	var cfg config
	fs := newCustomFlagSet("blob-tool")

	fs.Uint64Var(&cfg.Height, "height", 0, "block height the blob was included at")
	fs.StringVar(&cfg.Namespace, "namespace", "", "29-byte namespace, hex-encoded")
	fs.StringVar(&cfg.Commitment, "commitment", "", "32-byte blob commitment, hex-encoded")
	fs.StringVar(&cfg.DAAddr, "da", "ws://localhost:26658", "DA node WebSocket RPC address")
	fs.StringVar(&cfg.Out, "out", "proof_input.json", "output path for the assembled ProofInput")
	fs.StringVar(&cfg.HeaderOut, "header-out", "", "optional output path for the header field tree (data_hash proof)")

	if err := fs.Parse(args); err != nil {
		return cfg, true, 1
	}
	if cfg.Namespace == "" || cfg.Commitment == "" {
		fmt.Fprintln(os.Stderr, "blob-tool: --namespace and --commitment are required")
		return cfg, true, 1
	}
	return cfg, false, 0
}
