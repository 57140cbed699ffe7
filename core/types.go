package core

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Address is a 32-byte opaque account identifier. The all-zero address is
// the reserved genesis-authority sentinel (see GenesisAuthority).
type Address [32]byte

func (a Address) Bytes() []byte { return a[:] }

func (a Address) String() string {
	return fmt.Sprintf("%x", a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// GenesisAuthority is the only permitted `from` for bank_cgt.mint_to.
var GenesisAuthority = Address{}

// GenesisIdentity is the pre-funded, pre-Archon address created by the
// genesis initializer: 32 bytes of 0xAA.
var GenesisIdentity = func() Address {
	var a Address
	for i := range a {
		a[i] = 0xAA
	}
	return a
}()

// GenesisInitialBalance is minted to GenesisIdentity exactly once.
const GenesisInitialBalance uint64 = 1_000_000

// DevFaucetAmount is the build-flag gated dev faucet mint amount.
const DevFaucetAmount uint64 = 10_000

// Hash is a 32-byte digest.
type Hash [32]byte

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) String() string { return fmt.Sprintf("%x", h[:]) }

// Uint128 is a big-endian 128-bit unsigned integer used for the PoW
// difficulty target. Index 0 is the most significant byte.
type Uint128 [16]byte

// MaxUint128 always satisfies MeetsDifficulty.
var MaxUint128 = func() Uint128 {
	var u Uint128
	for i := range u {
		u[i] = 0xFF
	}
	return u
}()

// Transaction is the canonical, consensus-critical transaction record.
//
// Encoding is fixed-width little-endian integers plus length-prefixed
// (uint32 LE length) variable fields, in exactly this field order. Signature
// bytes are carried but never verified by this core.
type Transaction struct {
	From      Address
	Nonce     uint64
	ModuleID  string
	CallID    string
	Payload   []byte
	Fee       uint64
	Signature []byte
}

func writeUint32Prefixed(buf *bytes.Buffer, b []byte) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	buf.Write(lenBuf[:])
	buf.Write(b)
}

func readUint32Prefixed(r *bytes.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := r.Read(lenBuf[:]); err != nil {
		return nil, fmt.Errorf("read length prefix: %w", err)
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	out := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(out); err != nil {
			return nil, fmt.Errorf("read field bytes: %w", err)
		}
	}
	return out, nil
}

// Encode produces the canonical byte encoding of the transaction.
func (tx *Transaction) Encode() []byte {
	var buf bytes.Buffer
	buf.Write(tx.From[:])
	var nonceBuf [8]byte
	binary.LittleEndian.PutUint64(nonceBuf[:], tx.Nonce)
	buf.Write(nonceBuf[:])
	writeUint32Prefixed(&buf, []byte(tx.ModuleID))
	writeUint32Prefixed(&buf, []byte(tx.CallID))
	writeUint32Prefixed(&buf, tx.Payload)
	var feeBuf [8]byte
	binary.LittleEndian.PutUint64(feeBuf[:], tx.Fee)
	buf.Write(feeBuf[:])
	writeUint32Prefixed(&buf, tx.Signature)
	return buf.Bytes()
}

// DecodeTransaction parses the canonical byte encoding produced by Encode.
func DecodeTransaction(data []byte) (*Transaction, error) {
	r := bytes.NewReader(data)
	tx := &Transaction{}
	if _, err := r.Read(tx.From[:]); err != nil {
		return nil, errValidation("read from: %w", err)
	}
	var nonceBuf [8]byte
	if _, err := r.Read(nonceBuf[:]); err != nil {
		return nil, errValidation("read nonce: %w", err)
	}
	tx.Nonce = binary.LittleEndian.Uint64(nonceBuf[:])

	moduleID, err := readUint32Prefixed(r)
	if err != nil {
		return nil, errValidation("read module_id: %w", err)
	}
	tx.ModuleID = string(moduleID)

	callID, err := readUint32Prefixed(r)
	if err != nil {
		return nil, errValidation("read call_id: %w", err)
	}
	tx.CallID = string(callID)

	payload, err := readUint32Prefixed(r)
	if err != nil {
		return nil, errValidation("read payload: %w", err)
	}
	tx.Payload = payload

	var feeBuf [8]byte
	if _, err := r.Read(feeBuf[:]); err != nil {
		return nil, errValidation("read fee: %w", err)
	}
	tx.Fee = binary.LittleEndian.Uint64(feeBuf[:])

	sig, err := readUint32Prefixed(r)
	if err != nil {
		return nil, errValidation("read signature: %w", err)
	}
	tx.Signature = sig

	return tx, nil
}

// BlockHeader is the canonical block header. Nonce is the PoW solution found
// by an external miner; this core only verifies it.
type BlockHeader struct {
	Height           uint64
	PrevHash         Hash
	StateRoot        Hash
	Timestamp        uint64
	DifficultyTarget Uint128
	Nonce            uint64
}

// SerializeWithoutNonce is the PoW preimage: every header field in order,
// except Nonce.
func (h *BlockHeader) SerializeWithoutNonce() []byte {
	var buf bytes.Buffer
	var heightBuf [8]byte
	binary.LittleEndian.PutUint64(heightBuf[:], h.Height)
	buf.Write(heightBuf[:])
	buf.Write(h.PrevHash[:])
	buf.Write(h.StateRoot[:])
	var tsBuf [8]byte
	binary.LittleEndian.PutUint64(tsBuf[:], h.Timestamp)
	buf.Write(tsBuf[:])
	buf.Write(h.DifficultyTarget[:])
	return buf.Bytes()
}

// Serialize is the full header encoding, including Nonce.
func (h *BlockHeader) Serialize() []byte {
	base := h.SerializeWithoutNonce()
	var nonceBuf [8]byte
	binary.LittleEndian.PutUint64(nonceBuf[:], h.Nonce)
	return append(base, nonceBuf[:]...)
}

// Block is a header plus an ordered transaction body. Body order is
// execution order.
type Block struct {
	Header BlockHeader
	Body   []Transaction
}
