package core

import "math/bits"

// BankModule implements bank_cgt: fungible CGT balances, nonces, transfer,
// and authority-gated minting (spec §4.5).
type BankModule struct{}

func (*BankModule) ModuleID() string { return "bank_cgt" }

func (b *BankModule) Dispatch(callID string, tx *Transaction, s *State) error {
	switch callID {
	case "transfer":
		return b.transfer(tx, s)
	case "mint_to":
		return b.mintTo(tx, s)
	default:
		return ErrUnknownCall("bank_cgt", callID)
	}
}

// TransferPayload is the decoded payload for bank_cgt.transfer.
type TransferPayload struct {
	To     Address
	Amount uint64
}

// EncodePayload canonically encodes the transfer payload (fixed-width,
// matching the Transaction wire format discipline of spec §6).
func (p *TransferPayload) EncodePayload() []byte {
	out := make([]byte, 0, 40)
	out = append(out, p.To[:]...)
	var amtBuf [8]byte
	putUint64LE(amtBuf[:], p.Amount)
	return append(out, amtBuf[:]...)
}

// DecodeTransferPayload parses a bank_cgt.transfer payload.
func DecodeTransferPayload(data []byte) (*TransferPayload, error) {
	if len(data) != 40 {
		return nil, errValidation("transfer payload must be 40 bytes, got %d", len(data))
	}
	var p TransferPayload
	copy(p.To[:], data[:32])
	p.Amount = getUint64LE(data[32:40])
	return &p, nil
}

// MintToPayload is the decoded payload for bank_cgt.mint_to.
type MintToPayload struct {
	To     Address
	Amount uint64
}

func (p *MintToPayload) EncodePayload() []byte {
	out := make([]byte, 0, 40)
	out = append(out, p.To[:]...)
	var amtBuf [8]byte
	putUint64LE(amtBuf[:], p.Amount)
	return append(out, amtBuf[:]...)
}

func DecodeMintToPayload(data []byte) (*MintToPayload, error) {
	if len(data) != 40 {
		return nil, errValidation("mint_to payload must be 40 bytes, got %d", len(data))
	}
	var p MintToPayload
	copy(p.To[:], data[:32])
	p.Amount = getUint64LE(data[32:40])
	return &p, nil
}

func (b *BankModule) transfer(tx *Transaction, s *State) error {
	payload, err := DecodeTransferPayload(tx.Payload)
	if err != nil {
		return err
	}

	expectedNonce, err := s.getUint64Locked(bankNonceKey(tx.From))
	if err != nil {
		return err
	}
	if tx.Nonce != expectedNonce {
		return ErrInvalidNonce(expectedNonce, tx.Nonce)
	}

	total, carry := bits.Add64(payload.Amount, tx.Fee, 0)
	if carry != 0 {
		return ErrOverflow
	}

	fromBal, err := s.getUint64Locked(bankBalanceKey(tx.From))
	if err != nil {
		return err
	}
	if fromBal < total {
		return ErrInsufficientBalance
	}

	toBal, err := s.getUint64Locked(bankBalanceKey(payload.To))
	if err != nil {
		return err
	}
	newToBal, carry := bits.Add64(toBal, payload.Amount, 0)
	if carry != 0 {
		return ErrOverflow
	}

	// Self-transfer: read-then-write order still resolves correctly because
	// both balances are read before any write, and the final write for a
	// self-transfer is computed against the already-debited value.
	newFromBal := fromBal - total
	if tx.From == payload.To {
		newToBal = newFromBal + payload.Amount
	}

	if err := s.putUint64Locked(bankBalanceKey(tx.From), newFromBal); err != nil {
		return err
	}
	if err := s.putUint64Locked(bankBalanceKey(payload.To), newToBal); err != nil {
		return err
	}
	newNonce, carry := bits.Add64(expectedNonce, 1, 0)
	if carry != 0 {
		return ErrOverflow
	}
	return s.putUint64Locked(bankNonceKey(tx.From), newNonce)
}

func (b *BankModule) mintTo(tx *Transaction, s *State) error {
	if tx.From != GenesisAuthority {
		return ErrNotGenesisAuthority
	}
	payload, err := DecodeMintToPayload(tx.Payload)
	if err != nil {
		return err
	}

	bal, err := s.getUint64Locked(bankBalanceKey(payload.To))
	if err != nil {
		return err
	}
	newBal, carry := bits.Add64(bal, payload.Amount, 0)
	if carry != 0 {
		return ErrOverflow
	}
	return s.putUint64Locked(bankBalanceKey(payload.To), newBal)
}

// GetBalance is a read helper callable directly on State (not dispatched).
func GetBalance(s *State, addr Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getUint64Locked(bankBalanceKey(addr))
}

// GetNonce is a read helper callable directly on State (not dispatched).
func GetNonce(s *State, addr Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getUint64Locked(bankNonceKey(addr))
}
