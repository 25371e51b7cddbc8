package service

import (
	"go.dedis.ch/protobuf"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/ccr"
	"go.dedis.ch/returncodes/group"
	bbolt "go.etcd.io/bbolt"
	"golang.org/x/xerrors"
)

// store is a ccr.Store kept in the bucket of the service. Records are
// protobuf encoded, elements are read back into the group of the election
// event.
type store struct {
	db     *bbolt.DB
	bucket []byte
	group  *group.GqGroup
}

func eventKey(ee string) []byte {
	return []byte("event/" + ee)
}

func keysKey(ee string) []byte {
	return []byte("keys/" + ee)
}

func cardKeyKey(ee, vcs, vcID string) []byte {
	return []byte("card/" + ee + "/" + vcs + "/" + vcID)
}

func cardSetKey(ee, vcs string) []byte {
	return []byte("cardset/" + ee + "/" + vcs)
}

func flagKey(flag ccr.Flag, ee, vcs, vcID string) []byte {
	return []byte("flag/" + string(flag) + "/" + ee + "/" + vcs + "/" + vcID)
}

// get reads a record. It returns nil if there is none.
func get(db *bbolt.DB, bucket, key []byte) ([]byte, error) {
	var buf []byte
	err := db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucket).Get(key); v != nil {
			buf = append([]byte(nil), v...)
		}
		return nil
	})
	return buf, err
}

// putNew writes a record and fails with exists if the key is taken.
func putNew(db *bbolt.DB, bucket, key []byte, msg interface{}, exists error) error {
	buf, err := protobuf.Encode(msg)
	if err != nil {
		return xerrors.Errorf("encoding: %w", err)
	}
	return db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b.Get(key) != nil {
			return exists
		}
		return b.Put(key, buf)
	})
}

// putEvent writes a new election event and the keys of the node in one
// transaction. It fails if either exists.
func putEvent(db *bbolt.DB, bucket []byte, ee string, ev *event, ks *ccr.KeySet) error {
	evBuf, err := protobuf.Encode(ev)
	if err != nil {
		return xerrors.Errorf("encoding election event: %w", err)
	}
	keysBuf, err := protobuf.Encode(keysToRecord(ks))
	if err != nil {
		return xerrors.Errorf("encoding keys: %w", err)
	}
	return db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b.Get(eventKey(ee)) != nil || b.Get(keysKey(ee)) != nil {
			return returncodes.ProtocolStatef("event %s already exists", ee)
		}
		if err := b.Put(eventKey(ee), evBuf); err != nil {
			return err
		}
		return b.Put(keysKey(ee), keysBuf)
	})
}

// SaveKeys implements ccr.Store.
func (s *store) SaveKeys(ee string, ks *ccr.KeySet) error {
	return putNew(s.db, s.bucket, keysKey(ee), keysToRecord(ks),
		returncodes.ProtocolStatef("keys of election event %s already exist", ee))
}

// Keys implements ccr.Store.
func (s *store) Keys(ee string) (*ccr.KeySet, error) {
	buf, err := get(s.db, s.bucket, keysKey(ee))
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, returncodes.ProtocolStatef("no keys for election event %s", ee)
	}
	var k keys
	if err := protobuf.Decode(buf, &k); err != nil {
		return nil, xerrors.Errorf("decoding keys: %w", err)
	}
	return k.keySet(s.group)
}

// SaveCardPublicKeys implements ccr.Store.
func (s *store) SaveCardPublicKeys(ee, vcs string, keys map[string]group.GqElement) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for id, k := range keys {
			if err := b.Put(cardKeyKey(ee, vcs, id), k.Bytes()); err != nil {
				return err
			}
		}
		return nil
	})
}

// CardPublicKey implements ccr.Store.
func (s *store) CardPublicKey(ee, vcs, vcID string) (group.GqElement, error) {
	buf, err := get(s.db, s.bucket, cardKeyKey(ee, vcs, vcID))
	if err != nil {
		return group.GqElement{}, err
	}
	if buf == nil {
		return group.GqElement{}, returncodes.ProtocolStatef("unknown verification card %s", vcID)
	}
	return s.group.ElementFromBytes(buf)
}

// SaveCardSet implements ccr.Store.
func (s *store) SaveCardSet(cs *ccr.CardSet) error {
	buf, err := protobuf.Encode(NewUploadCardSet(cs))
	if err != nil {
		return xerrors.Errorf("encoding card set: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put(cardSetKey(cs.ElectionEventID, cs.VerificationCardSetID), buf)
	})
}

// CardSet implements ccr.Store.
func (s *store) CardSet(ee, vcs string) (*ccr.CardSet, error) {
	buf, err := get(s.db, s.bucket, cardSetKey(ee, vcs))
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, returncodes.ProtocolStatef("no allow list for verification card set %s", vcs)
	}
	var req UploadCardSet
	if err := protobuf.Decode(buf, &req); err != nil {
		return nil, xerrors.Errorf("decoding card set: %w", err)
	}
	return req.cardSet(s.group)
}

// IsSet implements ccr.Store.
func (s *store) IsSet(flag ccr.Flag, ee, vcs, vcID string) (bool, error) {
	buf, err := get(s.db, s.bucket, flagKey(flag, ee, vcs, vcID))
	return buf != nil, err
}

// CheckAndSet implements ccr.Store. The read and the write happen in the
// same transaction.
func (s *store) CheckAndSet(flag ccr.Flag, ee, vcs, vcID string) (bool, error) {
	set := false
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		k := flagKey(flag, ee, vcs, vcID)
		if b.Get(k) != nil {
			return nil
		}
		set = true
		return b.Put(k, []byte{1})
	})
	return set, err
}
