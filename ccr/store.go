package ccr

import (
	"sync"

	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
)

// Flag names a one-shot operation on a verification card.
type Flag string

// The one-shot operations of a node.
const (
	FlagPartialDecrypted Flag = "PartialDecryptPCC"
	FlagLCCShareCreated  Flag = "CreateLCCShare"
	FlagLVCCShareCreated Flag = "CreateLVCCShare"
)

// CardSet is what a node knows about a verification card set once the
// configuration is done.
type CardSet struct {
	ElectionEventID       string
	VerificationCardSetID string
	Params                lib.ElectionParameters
	Correctness           *lib.CombinedCorrectnessInformation
	// AllowList holds the digests of the hashed partial Choice Return
	// Codes.
	AllowList *lib.AllowList
	// LVCCAllowList holds the digests of the hashed long Vote Cast Return
	// Code shares.
	LVCCAllowList     *lib.AllowList
	ElectionPublicKey group.GqVector
	// CCRKey is the combined CCR Choice Return Codes encryption public key.
	CCRKey group.GqVector
}

// Validate checks the card set against the context.
func (cs *CardSet) Validate(ctx lib.SetupContext) error {
	if cs.ElectionEventID != ctx.ElectionEventID || cs.VerificationCardSetID != ctx.VerificationCardSetID {
		return returncodes.Validationf("card set %s of election event %s does not match the context",
			cs.VerificationCardSetID, cs.ElectionEventID)
	}
	if err := cs.Params.Validate(); err != nil {
		return err
	}
	if cs.Correctness == nil || cs.AllowList == nil || cs.LVCCAllowList == nil {
		return returncodes.Validationf("card set %s is incomplete", cs.VerificationCardSetID)
	}
	if err := cs.Correctness.Validate(cs.Params); err != nil {
		return err
	}
	if cs.ElectionPublicKey.Size() < cs.Params.Delta {
		return returncodes.Validationf("election public key must have at least delta=%d elements", cs.Params.Delta)
	}
	if err := group.CheckSize("CCR public key", cs.CCRKey, cs.Params.Phi); err != nil {
		return err
	}
	if err := ctx.CheckGroup("election public key", cs.ElectionPublicKey.Get(0).Group()); err != nil {
		return err
	}
	return ctx.CheckGroup("CCR public key", cs.CCRKey.Get(0).Group())
}

// Store persists the state of a node. Implementations must be safe for
// concurrent use.
type Store interface {
	// SaveKeys stores the key material of an election event. It returns an
	// ErrProtocolState if keys already exist.
	SaveKeys(ee string, keys *KeySet) error
	// Keys returns the key material of an election event, or an
	// ErrProtocolState if there is none.
	Keys(ee string) (*KeySet, error)
	// SaveCardPublicKeys adds verification card public keys to a card set.
	SaveCardPublicKeys(ee, vcs string, keys map[string]group.GqElement) error
	// CardPublicKey returns the public key of a verification card, or an
	// ErrProtocolState if it is unknown.
	CardPublicKey(ee, vcs, vcID string) (group.GqElement, error)
	// SaveCardSet stores the configuration of a card set.
	SaveCardSet(cs *CardSet) error
	// CardSet returns the configuration of a card set, or an
	// ErrProtocolState if there is none.
	CardSet(ee, vcs string) (*CardSet, error)
	// IsSet reads a one-shot flag of a verification card.
	IsSet(flag Flag, ee, vcs, vcID string) (bool, error)
	// CheckAndSet sets a one-shot flag and returns false if it was already
	// set.
	CheckAndSet(flag Flag, ee, vcs, vcID string) (bool, error)
}

// MemoryStore is a Store held in memory.
type MemoryStore struct {
	sync.Mutex
	keys     map[string]*KeySet
	cardKeys map[string]group.GqElement
	cardSets map[string]*CardSet
	flags    map[string]bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		keys:     make(map[string]*KeySet),
		cardKeys: make(map[string]group.GqElement),
		cardSets: make(map[string]*CardSet),
		flags:    make(map[string]bool),
	}
}

func cardSetKey(ee, vcs string) string {
	return ee + "/" + vcs
}

func flagKey(flag Flag, ee, vcs, vcID string) string {
	return string(flag) + "/" + cardSetKey(ee, vcs) + "/" + vcID
}

// SaveKeys implements Store.
func (s *MemoryStore) SaveKeys(ee string, keys *KeySet) error {
	s.Lock()
	defer s.Unlock()
	if _, ok := s.keys[ee]; ok {
		return returncodes.ProtocolStatef("keys of election event %s already exist", ee)
	}
	s.keys[ee] = keys
	return nil
}

// Keys implements Store.
func (s *MemoryStore) Keys(ee string) (*KeySet, error) {
	s.Lock()
	defer s.Unlock()
	keys, ok := s.keys[ee]
	if !ok {
		return nil, returncodes.ProtocolStatef("no keys for election event %s", ee)
	}
	return keys, nil
}

// SaveCardPublicKeys implements Store.
func (s *MemoryStore) SaveCardPublicKeys(ee, vcs string, keys map[string]group.GqElement) error {
	s.Lock()
	defer s.Unlock()
	for id, k := range keys {
		s.cardKeys[cardSetKey(ee, vcs)+"/"+id] = k
	}
	return nil
}

// CardPublicKey implements Store.
func (s *MemoryStore) CardPublicKey(ee, vcs, vcID string) (group.GqElement, error) {
	s.Lock()
	defer s.Unlock()
	k, ok := s.cardKeys[cardSetKey(ee, vcs)+"/"+vcID]
	if !ok {
		return group.GqElement{}, returncodes.ProtocolStatef("unknown verification card %s", vcID)
	}
	return k, nil
}

// SaveCardSet implements Store.
func (s *MemoryStore) SaveCardSet(cs *CardSet) error {
	s.Lock()
	defer s.Unlock()
	s.cardSets[cardSetKey(cs.ElectionEventID, cs.VerificationCardSetID)] = cs
	return nil
}

// CardSet implements Store.
func (s *MemoryStore) CardSet(ee, vcs string) (*CardSet, error) {
	s.Lock()
	defer s.Unlock()
	cs, ok := s.cardSets[cardSetKey(ee, vcs)]
	if !ok {
		return nil, returncodes.ProtocolStatef("no allow list for verification card set %s", vcs)
	}
	return cs, nil
}

// IsSet implements Store.
func (s *MemoryStore) IsSet(flag Flag, ee, vcs, vcID string) (bool, error) {
	s.Lock()
	defer s.Unlock()
	return s.flags[flagKey(flag, ee, vcs, vcID)], nil
}

// CheckAndSet implements Store.
func (s *MemoryStore) CheckAndSet(flag Flag, ee, vcs, vcID string) (bool, error) {
	s.Lock()
	defer s.Unlock()
	k := flagKey(flag, ee, vcs, vcID)
	if s.flags[k] {
		return false, nil
	}
	s.flags[k] = true
	return true, nil
}
