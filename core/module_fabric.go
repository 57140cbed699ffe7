package core

import "bytes"

// FabricModule implements fabric_manager: a content-addressed asset
// registry. Registration is idempotent by root hash (spec SPEC_FULL §4.8).
type FabricModule struct{}

func (*FabricModule) ModuleID() string { return "fabric_manager" }

func (f *FabricModule) Dispatch(callID string, tx *Transaction, s *State) error {
	switch callID {
	case "register_asset":
		return f.registerAsset(tx, s)
	default:
		return ErrUnknownCall("fabric_manager", callID)
	}
}

// FabricAsset is a registered content asset.
type FabricAsset struct {
	RootHash           [32]byte
	Publisher          Address
	URI                string
	SizeBytes          uint64
	RegisteredAtHeight uint64
}

func (a *FabricAsset) encode() []byte {
	var buf bytes.Buffer
	buf.Write(a.RootHash[:])
	buf.Write(a.Publisher[:])
	writeUint32Prefixed(&buf, []byte(a.URI))
	var u64buf [8]byte
	putUint64LE(u64buf[:], a.SizeBytes)
	buf.Write(u64buf[:])
	putUint64LE(u64buf[:], a.RegisteredAtHeight)
	buf.Write(u64buf[:])
	return buf.Bytes()
}

func decodeFabricAsset(data []byte) (*FabricAsset, error) {
	r := bytes.NewReader(data)
	a := &FabricAsset{}
	if _, err := r.Read(a.RootHash[:]); err != nil {
		return nil, errValidation("read root_hash: %w", err)
	}
	if _, err := r.Read(a.Publisher[:]); err != nil {
		return nil, errValidation("read publisher: %w", err)
	}
	uri, err := readUint32Prefixed(r)
	if err != nil {
		return nil, errValidation("read uri: %w", err)
	}
	a.URI = string(uri)
	var u64buf [8]byte
	if _, err := r.Read(u64buf[:]); err != nil {
		return nil, errValidation("read size_bytes: %w", err)
	}
	a.SizeBytes = getUint64LE(u64buf[:])
	if _, err := r.Read(u64buf[:]); err != nil {
		return nil, errValidation("read registered_at_height: %w", err)
	}
	a.RegisteredAtHeight = getUint64LE(u64buf[:])
	return a, nil
}

// RegisterAssetPayload is the decoded payload for fabric_manager.register_asset.
type RegisterAssetPayload struct {
	RootHash  [32]byte
	URI       string
	SizeBytes uint64
}

func (p *RegisterAssetPayload) EncodePayload() []byte {
	var buf bytes.Buffer
	buf.Write(p.RootHash[:])
	writeUint32Prefixed(&buf, []byte(p.URI))
	var u64buf [8]byte
	putUint64LE(u64buf[:], p.SizeBytes)
	buf.Write(u64buf[:])
	return buf.Bytes()
}

func DecodeRegisterAssetPayload(data []byte) (*RegisterAssetPayload, error) {
	r := bytes.NewReader(data)
	p := &RegisterAssetPayload{}
	if _, err := r.Read(p.RootHash[:]); err != nil {
		return nil, errValidation("read root_hash: %w", err)
	}
	uri, err := readUint32Prefixed(r)
	if err != nil {
		return nil, errValidation("read uri: %w", err)
	}
	p.URI = string(uri)
	var u64buf [8]byte
	if _, err := r.Read(u64buf[:]); err != nil {
		return nil, errValidation("read size_bytes: %w", err)
	}
	p.SizeBytes = getUint64LE(u64buf[:])
	return p, nil
}

func (f *FabricModule) registerAsset(tx *Transaction, s *State) error {
	payload, err := DecodeRegisterAssetPayload(tx.Payload)
	if err != nil {
		return err
	}

	existing, err := s.backend.GetRaw(fabricAssetKey(payload.RootHash))
	if err != nil {
		return errStorage("get asset: %w", err)
	}
	if existing != nil {
		// content-addressed: re-registering the same hash is a no-op success.
		return nil
	}

	asset := &FabricAsset{
		RootHash:           payload.RootHash,
		Publisher:          tx.From,
		URI:                payload.URI,
		SizeBytes:          payload.SizeBytes,
		RegisteredAtHeight: s.currentHeight,
	}
	return s.putRawLocked(fabricAssetKey(payload.RootHash), asset.encode())
}

// GetFabricAsset is a read helper callable directly on State.
func GetFabricAsset(s *State, rootHash [32]byte) (*FabricAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, err := s.backend.GetRaw(fabricAssetKey(rootHash))
	if err != nil {
		return nil, errStorage("get asset: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	return decodeFabricAsset(raw)
}
