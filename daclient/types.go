package daclient

import (
	"encoding/base64"
	"fmt"

	"github.com/eqlabs/eq-service/inclusion"
	"github.com/eqlabs/eq-service/nmt"
)

func namespaceB64(ns nmt.ID) string {
	return base64.StdEncoding.EncodeToString(ns[:])
}

func commitmentB64(c inclusion.Commitment) string {
	return base64.StdEncoding.EncodeToString(c[:])
}

type wireNamespacedHash struct {
	Min    string `json:"min"`
	Max    string `json:"max"`
	Digest string `json:"digest"`
}

func (w wireNamespacedHash) toHash() (nmt.Hash, error) {
	b := make([]byte, 0, 90)
	for _, f := range []string{w.Min, w.Max, w.Digest} {
		d, err := base64.StdEncoding.DecodeString(f)
		if err != nil {
			return nmt.Hash{}, err
		}
		b = append(b, d...)
	}
	h, ok := nmt.HashFromBytes(b)
	if !ok {
		return nmt.Hash{}, fmt.Errorf("daclient: malformed namespaced hash")
	}
	return h, nil
}

type wireDAH struct {
	RowRoots    []wireNamespacedHash `json:"row_roots"`
	ColumnRoots []wireNamespacedHash `json:"column_roots"`
}

type wireExtendedHeader struct {
	Height             uint64  `json:"height"`
	VersionBlock       uint64  `json:"version_block"`
	VersionApp         uint64  `json:"version_app"`
	ChainID            string  `json:"chain_id"`
	TimeUnixNano       int64   `json:"time_unix_nano"`
	LastBlockID        string  `json:"last_block_id"`
	LastCommitHash     string  `json:"last_commit_hash"`
	DataHash           string  `json:"data_hash"`
	ValidatorsHash     string  `json:"validators_hash"`
	NextValidatorsHash string  `json:"next_validators_hash"`
	ConsensusHash      string  `json:"consensus_hash"`
	AppHash            string  `json:"app_hash"`
	LastResultsHash    string  `json:"last_results_hash"`
	EvidenceHash       string  `json:"evidence_hash"`
	ProposerAddress    string  `json:"proposer_address"`
	DAH                wireDAH `json:"dah"`
}

func decodeHash32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("daclient: expected 32-byte hash, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func (w *wireExtendedHeader) toHeader() (*inclusion.ExtendedHeader, error) {
	h := &inclusion.ExtendedHeader{
		Height:          w.Height,
		VersionBlock:    w.VersionBlock,
		VersionApp:      w.VersionApp,
		ChainID:         w.ChainID,
		Time:            w.TimeUnixNano,
		LastBlockID:     []byte(w.LastBlockID),
		ProposerAddress: []byte(w.ProposerAddress),
	}
	var err error
	for _, f := range []struct {
		dst *[32]byte
		src string
	}{
		{&h.LastCommitHash, w.LastCommitHash},
		{&h.DataHash, w.DataHash},
		{&h.ValidatorsHash, w.ValidatorsHash},
		{&h.NextValidatorsHash, w.NextValidatorsHash},
		{&h.ConsensusHash, w.ConsensusHash},
		{&h.AppHash, w.AppHash},
		{&h.LastResultsHash, w.LastResultsHash},
		{&h.EvidenceHash, w.EvidenceHash},
	} {
		*f.dst, err = decodeHash32(f.src)
		if err != nil {
			return nil, err
		}
	}

	h.DAH.RowRoots = make([]nmt.Hash, len(w.DAH.RowRoots))
	for i, r := range w.DAH.RowRoots {
		if h.DAH.RowRoots[i], err = r.toHash(); err != nil {
			return nil, err
		}
	}
	h.DAH.ColumnRoots = make([]nmt.Hash, len(w.DAH.ColumnRoots))
	for i, r := range w.DAH.ColumnRoots {
		if h.DAH.ColumnRoots[i], err = r.toHash(); err != nil {
			return nil, err
		}
	}
	return h, nil
}

type wireBlob struct {
	Data       string  `json:"data"`
	Index      *uint64 `json:"index"`
	AppVersion uint64  `json:"app_version"`
}

func (w *wireBlob) toBlob(namespace nmt.ID, commitment inclusion.Commitment) (*inclusion.Blob, error) {
	data, err := base64.StdEncoding.DecodeString(w.Data)
	if err != nil {
		return nil, err
	}
	return &inclusion.Blob{
		Namespace:  namespace,
		Data:       data,
		Index:      w.Index,
		AppVersion: w.AppVersion,
		Commitment: commitment,
	}, nil
}

type wireSiblingNode struct {
	Hash wireNamespacedHash `json:"hash"`
	Left bool               `json:"left"`
}

type wireNMTProof struct {
	StartIdx int               `json:"start_idx"`
	EndIdx   int               `json:"end_idx"`
	Total    int               `json:"total"`
	Siblings []wireSiblingNode `json:"siblings"`
}

func (w wireNMTProof) toProof() *nmt.Proof {
	siblings := make([]nmt.SiblingNode, len(w.Siblings))
	for i, s := range w.Siblings {
		h, _ := s.Hash.toHash()
		siblings[i] = nmt.SiblingNode{Hash: h, Left: s.Left}
	}
	return &nmt.Proof{StartIdx: w.StartIdx, EndIdx: w.EndIdx, Total: w.Total, Siblings: siblings}
}
