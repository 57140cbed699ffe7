package core

import (
	"bytes"
	"math/bits"
)

// NftModule implements nft_dgen: D-GEN non-fungible token minting (gated by
// the Archon flag), transfer, and the owner index (spec §4.7).
type NftModule struct{}

func (*NftModule) ModuleID() string { return "nft_dgen" }

func (n *NftModule) Dispatch(callID string, tx *Transaction, s *State) error {
	switch callID {
	case "mint_dgen":
		return n.mintDgen(tx, s)
	case "transfer_nft":
		return n.transferNft(tx, s)
	default:
		return ErrUnknownCall("nft_dgen", callID)
	}
}

// DGenMetadata describes a single D-GEN NFT. Creator is immutable; Owner
// changes on transfer.
type DGenMetadata struct {
	Creator          Address
	Owner            Address
	FabricRootHash   [32]byte
	ForgeModelID     *[32]byte
	ForgePromptHash  *[32]byte
	RoyaltyRecipient *Address
	RoyaltyBps       uint16
}

func writeOptionalHash(buf *bytes.Buffer, h *[32]byte) {
	if h != nil {
		buf.WriteByte(1)
		buf.Write(h[:])
	} else {
		buf.WriteByte(0)
	}
}

func readOptionalHash(r *bytes.Reader) (*[32]byte, error) {
	present, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	var h [32]byte
	if _, err := r.Read(h[:]); err != nil {
		return nil, err
	}
	return &h, nil
}

func (m *DGenMetadata) encode() []byte {
	var buf bytes.Buffer
	buf.Write(m.Creator[:])
	buf.Write(m.Owner[:])
	buf.Write(m.FabricRootHash[:])
	writeOptionalHash(&buf, m.ForgeModelID)
	writeOptionalHash(&buf, m.ForgePromptHash)
	if m.RoyaltyRecipient != nil {
		buf.WriteByte(1)
		buf.Write(m.RoyaltyRecipient[:])
	} else {
		buf.WriteByte(0)
	}
	var bpsBuf [2]byte
	bpsBuf[0] = byte(m.RoyaltyBps)
	bpsBuf[1] = byte(m.RoyaltyBps >> 8)
	buf.Write(bpsBuf[:])
	return buf.Bytes()
}

func decodeDGenMetadata(data []byte) (*DGenMetadata, error) {
	r := bytes.NewReader(data)
	m := &DGenMetadata{}
	if _, err := r.Read(m.Creator[:]); err != nil {
		return nil, errValidation("read creator: %w", err)
	}
	if _, err := r.Read(m.Owner[:]); err != nil {
		return nil, errValidation("read owner: %w", err)
	}
	if _, err := r.Read(m.FabricRootHash[:]); err != nil {
		return nil, errValidation("read fabric_root_hash: %w", err)
	}
	modelID, err := readOptionalHash(r)
	if err != nil {
		return nil, errValidation("read forge_model_id: %w", err)
	}
	m.ForgeModelID = modelID
	promptHash, err := readOptionalHash(r)
	if err != nil {
		return nil, errValidation("read forge_prompt_hash: %w", err)
	}
	m.ForgePromptHash = promptHash

	present, err := r.ReadByte()
	if err != nil {
		return nil, errValidation("read royalty flag: %w", err)
	}
	if present == 1 {
		var a Address
		if _, err := r.Read(a[:]); err != nil {
			return nil, errValidation("read royalty_recipient: %w", err)
		}
		m.RoyaltyRecipient = &a
	}

	var bpsBuf [2]byte
	if _, err := r.Read(bpsBuf[:]); err != nil {
		return nil, errValidation("read royalty_bps: %w", err)
	}
	m.RoyaltyBps = uint16(bpsBuf[0]) | uint16(bpsBuf[1])<<8

	return m, nil
}

// MintDgenPayload is the decoded payload for nft_dgen.mint_dgen.
type MintDgenPayload struct {
	FabricRootHash   [32]byte
	ForgeModelID     *[32]byte
	ForgePromptHash  *[32]byte
	RoyaltyRecipient *Address
	RoyaltyBps       uint16
}

func (p *MintDgenPayload) EncodePayload() []byte {
	var buf bytes.Buffer
	buf.Write(p.FabricRootHash[:])
	writeOptionalHash(&buf, p.ForgeModelID)
	writeOptionalHash(&buf, p.ForgePromptHash)
	if p.RoyaltyRecipient != nil {
		buf.WriteByte(1)
		buf.Write(p.RoyaltyRecipient[:])
	} else {
		buf.WriteByte(0)
	}
	var bpsBuf [2]byte
	bpsBuf[0] = byte(p.RoyaltyBps)
	bpsBuf[1] = byte(p.RoyaltyBps >> 8)
	buf.Write(bpsBuf[:])
	return buf.Bytes()
}

func DecodeMintDgenPayload(data []byte) (*MintDgenPayload, error) {
	r := bytes.NewReader(data)
	p := &MintDgenPayload{}
	if _, err := r.Read(p.FabricRootHash[:]); err != nil {
		return nil, errValidation("read fabric_root_hash: %w", err)
	}
	modelID, err := readOptionalHash(r)
	if err != nil {
		return nil, errValidation("read forge_model_id: %w", err)
	}
	p.ForgeModelID = modelID
	promptHash, err := readOptionalHash(r)
	if err != nil {
		return nil, errValidation("read forge_prompt_hash: %w", err)
	}
	p.ForgePromptHash = promptHash

	present, err := r.ReadByte()
	if err != nil {
		return nil, errValidation("read royalty flag: %w", err)
	}
	if present == 1 {
		var a Address
		if _, err := r.Read(a[:]); err != nil {
			return nil, errValidation("read royalty_recipient: %w", err)
		}
		p.RoyaltyRecipient = &a
	}

	var bpsBuf [2]byte
	if _, err := r.Read(bpsBuf[:]); err != nil {
		return nil, errValidation("read royalty_bps: %w", err)
	}
	p.RoyaltyBps = uint16(bpsBuf[0]) | uint16(bpsBuf[1])<<8
	return p, nil
}

// TransferNftPayload is the decoded payload for nft_dgen.transfer_nft.
type TransferNftPayload struct {
	TokenID uint64
	To      Address
}

func (p *TransferNftPayload) EncodePayload() []byte {
	out := make([]byte, 40)
	putUint64LE(out[:8], p.TokenID)
	copy(out[8:], p.To[:])
	return out
}

func DecodeTransferNftPayload(data []byte) (*TransferNftPayload, error) {
	if len(data) != 40 {
		return nil, errValidation("transfer_nft payload must be 40 bytes, got %d", len(data))
	}
	p := &TransferNftPayload{TokenID: getUint64LE(data[:8])}
	copy(p.To[:], data[8:])
	return p, nil
}

func encodeNftIDList(ids []uint64) []byte {
	out := make([]byte, 4+8*len(ids))
	putUint32LE(out[:4], uint32(len(ids)))
	for i, id := range ids {
		putUint64LE(out[4+8*i:4+8*i+8], id)
	}
	return out
}

func decodeNftIDList(data []byte) ([]uint64, error) {
	if len(data) < 4 {
		return nil, errValidation("owner id list truncated")
	}
	count := getUint32LE(data[:4])
	if uint64(len(data)) != 4+8*uint64(count) {
		return nil, errValidation("owner id list length mismatch")
	}
	ids := make([]uint64, count)
	for i := uint32(0); i < count; i++ {
		ids[i] = getUint64LE(data[4+8*i : 4+8*i+8])
	}
	return ids, nil
}

func getOwnerIDsLocked(s *State, addr Address) ([]uint64, error) {
	raw, err := s.backend.GetRaw(nftOwnerKey(addr))
	if err != nil {
		return nil, errStorage("get owner ids: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	return decodeNftIDList(raw)
}

func putOwnerIDsLocked(s *State, addr Address, ids []uint64) error {
	return s.putRawLocked(nftOwnerKey(addr), encodeNftIDList(ids))
}

func (n *NftModule) mintDgen(tx *Transaction, s *State) error {
	archon, err := s.getBoolLocked(archonKey(tx.From))
	if err != nil {
		return err
	}
	if !archon {
		return ErrNotArchon
	}
	payload, err := DecodeMintDgenPayload(tx.Payload)
	if err != nil {
		return err
	}

	id, err := s.getUint64Locked([]byte(keyNftCounter))
	if err != nil {
		return err
	}
	newCounter, carry := bits.Add64(id, 1, 0)
	if carry != 0 {
		return ErrNftIdOverflow
	}
	if err := s.putUint64Locked([]byte(keyNftCounter), newCounter); err != nil {
		return err
	}

	meta := &DGenMetadata{
		Creator:          tx.From,
		Owner:            tx.From,
		FabricRootHash:   payload.FabricRootHash,
		ForgeModelID:     payload.ForgeModelID,
		ForgePromptHash:  payload.ForgePromptHash,
		RoyaltyRecipient: payload.RoyaltyRecipient,
		RoyaltyBps:       payload.RoyaltyBps,
	}
	if err := s.putRawLocked(nftTokenKey(id), meta.encode()); err != nil {
		return err
	}

	ids, err := getOwnerIDsLocked(s, tx.From)
	if err != nil {
		return err
	}
	ids = append(ids, id)
	return putOwnerIDsLocked(s, tx.From, ids)
}

func (n *NftModule) transferNft(tx *Transaction, s *State) error {
	payload, err := DecodeTransferNftPayload(tx.Payload)
	if err != nil {
		return err
	}

	raw, err := s.backend.GetRaw(nftTokenKey(payload.TokenID))
	if err != nil {
		return errStorage("get token: %w", err)
	}
	if raw == nil {
		return ErrNftNotFound
	}
	meta, err := decodeDGenMetadata(raw)
	if err != nil {
		return err
	}
	if meta.Owner != tx.From {
		return ErrNotOwner
	}

	oldOwnerIDs, err := getOwnerIDsLocked(s, meta.Owner)
	if err != nil {
		return err
	}
	filtered := oldOwnerIDs[:0]
	for _, id := range oldOwnerIDs {
		if id != payload.TokenID {
			filtered = append(filtered, id)
		}
	}
	if err := putOwnerIDsLocked(s, meta.Owner, filtered); err != nil {
		return err
	}

	newOwnerIDs, err := getOwnerIDsLocked(s, payload.To)
	if err != nil {
		return err
	}
	newOwnerIDs = append(newOwnerIDs, payload.TokenID)
	if err := putOwnerIDsLocked(s, payload.To, newOwnerIDs); err != nil {
		return err
	}

	meta.Owner = payload.To
	return s.putRawLocked(nftTokenKey(payload.TokenID), meta.encode())
}

// GetDGenMetadata is a read helper callable directly on State.
func GetDGenMetadata(s *State, id uint64) (*DGenMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, err := s.backend.GetRaw(nftTokenKey(id))
	if err != nil {
		return nil, errStorage("get token: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	return decodeDGenMetadata(raw)
}

// GetOwnerNfts is a read helper returning the NFT ids owned by addr.
func GetOwnerNfts(s *State, addr Address) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getOwnerIDsLocked(s, addr)
}

// GetNftCounter is a read helper returning the next-to-mint NFT id.
func GetNftCounter(s *State) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getUint64Locked([]byte(keyNftCounter))
}
