package core

import (
	"bytes"
	"math/bits"
)

// AvatarsModule implements avatars_profiles: the Archon minter-privilege
// flag and Aeon progression profiles (spec §4.6).
type AvatarsModule struct{}

func (*AvatarsModule) ModuleID() string { return "avatars_profiles" }

func (a *AvatarsModule) Dispatch(callID string, tx *Transaction, s *State) error {
	switch callID {
	case "claim_archon":
		return s.putBoolLocked(archonKey(tx.From), true)
	default:
		return ErrUnknownCall("avatars_profiles", callID)
	}
}

// IsArchon reads the Archon flag. Callable directly by hosts; not dispatched
// via transactions. It takes the State read lock, so code already running
// under that lock (a module's Dispatch, e.g. nft_dgen's mint_dgen) reads the
// flag with getBoolLocked(archonKey(addr)) instead.
func IsArchon(s *State, addr Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getBoolLocked(archonKey(addr))
}

// AeonProfile is a user's identity/progression record.
type AeonProfile struct {
	Address         Address
	DisplayName     string
	Bio             *string
	GnosisXP        uint64
	SyzygyScore     uint64
	AscensionLevel  uint32
	Badges          []string
	CreatedAtHeight uint64
}

// LuminaryBadge is granted at 10,000 Syzygy (spec §4.6, GLOSSARY).
const LuminaryBadge = "Luminary"

// LuminaryThreshold is the Syzygy Score required to earn LuminaryBadge.
const LuminaryThreshold = 10_000

// AscensionDivisor is the denominator in the ascension-level formula.
const AscensionDivisor = 1_000

func (p *AeonProfile) encode() []byte {
	var buf bytes.Buffer
	buf.Write(p.Address[:])
	writeUint32Prefixed(&buf, []byte(p.DisplayName))
	if p.Bio != nil {
		buf.WriteByte(1)
		writeUint32Prefixed(&buf, []byte(*p.Bio))
	} else {
		buf.WriteByte(0)
	}
	var u64buf [8]byte
	putUint64LE(u64buf[:], p.GnosisXP)
	buf.Write(u64buf[:])
	putUint64LE(u64buf[:], p.SyzygyScore)
	buf.Write(u64buf[:])
	var u32buf [4]byte
	putUint32LE(u32buf[:], p.AscensionLevel)
	buf.Write(u32buf[:])
	putUint32LE(u32buf[:], uint32(len(p.Badges)))
	buf.Write(u32buf[:])
	for _, badge := range p.Badges {
		writeUint32Prefixed(&buf, []byte(badge))
	}
	putUint64LE(u64buf[:], p.CreatedAtHeight)
	buf.Write(u64buf[:])
	return buf.Bytes()
}

func decodeAeonProfile(data []byte) (*AeonProfile, error) {
	r := bytes.NewReader(data)
	p := &AeonProfile{}
	if _, err := r.Read(p.Address[:]); err != nil {
		return nil, errValidation("read address: %w", err)
	}
	name, err := readUint32Prefixed(r)
	if err != nil {
		return nil, errValidation("read display_name: %w", err)
	}
	p.DisplayName = string(name)

	hasBio, err := r.ReadByte()
	if err != nil {
		return nil, errValidation("read bio flag: %w", err)
	}
	if hasBio == 1 {
		bio, err := readUint32Prefixed(r)
		if err != nil {
			return nil, errValidation("read bio: %w", err)
		}
		s := string(bio)
		p.Bio = &s
	}

	var u64buf [8]byte
	if _, err := r.Read(u64buf[:]); err != nil {
		return nil, errValidation("read gnosis_xp: %w", err)
	}
	p.GnosisXP = getUint64LE(u64buf[:])
	if _, err := r.Read(u64buf[:]); err != nil {
		return nil, errValidation("read syzygy_score: %w", err)
	}
	p.SyzygyScore = getUint64LE(u64buf[:])

	var u32buf [4]byte
	if _, err := r.Read(u32buf[:]); err != nil {
		return nil, errValidation("read ascension_level: %w", err)
	}
	p.AscensionLevel = getUint32LE(u32buf[:])

	if _, err := r.Read(u32buf[:]); err != nil {
		return nil, errValidation("read badge count: %w", err)
	}
	count := getUint32LE(u32buf[:])
	p.Badges = make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		b, err := readUint32Prefixed(r)
		if err != nil {
			return nil, errValidation("read badge %d: %w", i, err)
		}
		p.Badges = append(p.Badges, string(b))
	}

	if _, err := r.Read(u64buf[:]); err != nil {
		return nil, errValidation("read created_at_height: %w", err)
	}
	p.CreatedAtHeight = getUint64LE(u64buf[:])

	return p, nil
}

func getAeonProfileLocked(s *State, addr Address) (*AeonProfile, error) {
	raw, err := s.backend.GetRaw(aeonProfileKey(addr))
	if err != nil {
		return nil, errStorage("get profile: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	return decodeAeonProfile(raw)
}

func putAeonProfileLocked(s *State, p *AeonProfile) error {
	return s.putRawLocked(aeonProfileKey(p.Address), p.encode())
}

// CreateAeonProfile creates a fresh progression profile for address, failing
// with ErrProfileAlreadyExists if one already exists.
func CreateAeonProfile(s *State, address Address, displayName string, bio *string, currentHeight uint64) (*AeonProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := getAeonProfileLocked(s, address)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrProfileAlreadyExists
	}

	p := &AeonProfile{
		Address:         address,
		DisplayName:     displayName,
		Bio:             bio,
		GnosisXP:        0,
		SyzygyScore:     0,
		AscensionLevel:  1,
		Badges:          nil,
		CreatedAtHeight: currentHeight,
	}
	if err := putAeonProfileLocked(s, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddGnosisXP checked-adds amount to address's Gnosis XP.
func AddGnosisXP(s *State, address Address, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := getAeonProfileLocked(s, address)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProfileNotFound
	}
	newXP, carry := bits.Add64(p.GnosisXP, amount, 0)
	if carry != 0 {
		return ErrOverflow
	}
	p.GnosisXP = newXP
	return putAeonProfileLocked(s, p)
}

// AddSyzygyScore checked-adds amount to address's Syzygy Score.
func AddSyzygyScore(s *State, address Address, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := getAeonProfileLocked(s, address)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProfileNotFound
	}
	newScore, carry := bits.Add64(p.SyzygyScore, amount, 0)
	if carry != 0 {
		return ErrOverflow
	}
	p.SyzygyScore = newScore
	return putAeonProfileLocked(s, p)
}

// RecomputeAscension sets ascension_level = 1 + floor((xp + 2*score) / 1000),
// both operations checked against uint64 overflow.
func RecomputeAscension(s *State, address Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := getAeonProfileLocked(s, address)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProfileNotFound
	}
	carryMul, weightedScore := bits.Mul64(p.SyzygyScore, 2)
	if carryMul != 0 {
		return ErrOverflow
	}
	total, carryAdd := bits.Add64(p.GnosisXP, weightedScore, 0)
	if carryAdd != 0 {
		return ErrOverflow
	}
	p.AscensionLevel = uint32(1 + total/AscensionDivisor)
	return putAeonProfileLocked(s, p)
}

// UpdateBadges appends LuminaryBadge once Syzygy Score reaches
// LuminaryThreshold. Idempotent.
func UpdateBadges(s *State, address Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := getAeonProfileLocked(s, address)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProfileNotFound
	}
	if p.SyzygyScore >= LuminaryThreshold {
		has := false
		for _, b := range p.Badges {
			if b == LuminaryBadge {
				has = true
				break
			}
		}
		if !has {
			p.Badges = append(p.Badges, LuminaryBadge)
			return putAeonProfileLocked(s, p)
		}
	}
	return nil
}

// GetAeonProfile is a read helper callable directly on State.
func GetAeonProfile(s *State, address Address) (*AeonProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getAeonProfileLocked(s, address)
}
