package core

import (
	"bytes"
	"math/bits"
)

// AbyssModule implements abyss_registry: marketplace listings over assets
// registered with fabric_manager (spec SPEC_FULL §4.8).
type AbyssModule struct{}

func (*AbyssModule) ModuleID() string { return "abyss_registry" }

func (ab *AbyssModule) Dispatch(callID string, tx *Transaction, s *State) error {
	switch callID {
	case "create_listing":
		return ab.createListing(tx, s)
	case "cancel_listing":
		return ab.cancelListing(tx, s)
	default:
		return ErrUnknownCall("abyss_registry", callID)
	}
}

// Listing is a marketplace entry referencing a FabricAsset by root hash.
type Listing struct {
	ID              uint64
	Seller          Address
	FabricRootHash  [32]byte
	Price           uint64
	Active          bool
	CreatedAtHeight uint64
}

func (l *Listing) encode() []byte {
	var buf bytes.Buffer
	var u64buf [8]byte
	putUint64LE(u64buf[:], l.ID)
	buf.Write(u64buf[:])
	buf.Write(l.Seller[:])
	buf.Write(l.FabricRootHash[:])
	putUint64LE(u64buf[:], l.Price)
	buf.Write(u64buf[:])
	if l.Active {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	putUint64LE(u64buf[:], l.CreatedAtHeight)
	buf.Write(u64buf[:])
	return buf.Bytes()
}

func decodeListing(data []byte) (*Listing, error) {
	r := bytes.NewReader(data)
	l := &Listing{}
	var u64buf [8]byte
	if _, err := r.Read(u64buf[:]); err != nil {
		return nil, errValidation("read id: %w", err)
	}
	l.ID = getUint64LE(u64buf[:])
	if _, err := r.Read(l.Seller[:]); err != nil {
		return nil, errValidation("read seller: %w", err)
	}
	if _, err := r.Read(l.FabricRootHash[:]); err != nil {
		return nil, errValidation("read fabric_root_hash: %w", err)
	}
	if _, err := r.Read(u64buf[:]); err != nil {
		return nil, errValidation("read price: %w", err)
	}
	l.Price = getUint64LE(u64buf[:])
	active, err := r.ReadByte()
	if err != nil {
		return nil, errValidation("read active: %w", err)
	}
	l.Active = active == 1
	if _, err := r.Read(u64buf[:]); err != nil {
		return nil, errValidation("read created_at_height: %w", err)
	}
	l.CreatedAtHeight = getUint64LE(u64buf[:])
	return l, nil
}

// CreateListingPayload is the decoded payload for abyss_registry.create_listing.
type CreateListingPayload struct {
	FabricRootHash [32]byte
	Price          uint64
}

func (p *CreateListingPayload) EncodePayload() []byte {
	out := make([]byte, 40)
	copy(out[:32], p.FabricRootHash[:])
	putUint64LE(out[32:], p.Price)
	return out
}

func DecodeCreateListingPayload(data []byte) (*CreateListingPayload, error) {
	if len(data) != 40 {
		return nil, errValidation("create_listing payload must be 40 bytes, got %d", len(data))
	}
	p := &CreateListingPayload{}
	copy(p.FabricRootHash[:], data[:32])
	p.Price = getUint64LE(data[32:])
	return p, nil
}

// CancelListingPayload is the decoded payload for abyss_registry.cancel_listing.
type CancelListingPayload struct {
	ListingID uint64
}

func (p *CancelListingPayload) EncodePayload() []byte {
	out := make([]byte, 8)
	putUint64LE(out, p.ListingID)
	return out
}

func DecodeCancelListingPayload(data []byte) (*CancelListingPayload, error) {
	if len(data) != 8 {
		return nil, errValidation("cancel_listing payload must be 8 bytes, got %d", len(data))
	}
	return &CancelListingPayload{ListingID: getUint64LE(data)}, nil
}

func (ab *AbyssModule) createListing(tx *Transaction, s *State) error {
	payload, err := DecodeCreateListingPayload(tx.Payload)
	if err != nil {
		return err
	}

	asset, err := s.backend.GetRaw(fabricAssetKey(payload.FabricRootHash))
	if err != nil {
		return errStorage("get asset: %w", err)
	}
	if asset == nil {
		return ErrAssetNotFound
	}

	id, err := s.getUint64Locked([]byte(keyAbyssCounter))
	if err != nil {
		return err
	}
	newCounter, carry := bits.Add64(id, 1, 0)
	if carry != 0 {
		return ErrListingIdOverflow
	}
	if err := s.putUint64Locked([]byte(keyAbyssCounter), newCounter); err != nil {
		return err
	}

	listing := &Listing{
		ID:              id,
		Seller:          tx.From,
		FabricRootHash:  payload.FabricRootHash,
		Price:           payload.Price,
		Active:          true,
		CreatedAtHeight: s.currentHeight,
	}
	return s.putRawLocked(abyssListingKey(id), listing.encode())
}

func (ab *AbyssModule) cancelListing(tx *Transaction, s *State) error {
	payload, err := DecodeCancelListingPayload(tx.Payload)
	if err != nil {
		return err
	}

	raw, err := s.backend.GetRaw(abyssListingKey(payload.ListingID))
	if err != nil {
		return errStorage("get listing: %w", err)
	}
	if raw == nil {
		return ErrListingNotFound
	}
	listing, err := decodeListing(raw)
	if err != nil {
		return err
	}
	if listing.Seller != tx.From {
		return ErrNotSeller
	}
	if !listing.Active {
		return nil // idempotent
	}
	listing.Active = false
	return s.putRawLocked(abyssListingKey(payload.ListingID), listing.encode())
}

// GetListing is a read helper callable directly on State.
func GetListing(s *State, id uint64) (*Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, err := s.backend.GetRaw(abyssListingKey(id))
	if err != nil {
		return nil, errStorage("get listing: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	return decodeListing(raw)
}
