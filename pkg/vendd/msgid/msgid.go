package msgid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// EntropyBytes is the number of random bytes in a message id
	EntropyBytes = 8
)

// MsgID is a message id for a call to the vending host
//
// The id combines a coarse timestamp with a random suffix so that ids are
// time-ordered and concurrent callers in one process cannot collide.
type MsgID struct {
	ID      string
	Created time.Time
}

func New() (*MsgID, error) {
	m := &MsgID{}
	err := m.Generate()
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MsgID) Generate() error {
	b := make([]byte, EntropyBytes)
	_, err := rand.Read(b)
	if err != nil {
		return err
	}
	m.Created = time.Now()
	m.ID = fmt.Sprintf("%10d-%s", m.Created.Unix(), hex.EncodeToString(b))
	return nil
}

func (m *MsgID) String() string {
	return m.ID
}

// Generate returns a fresh message id string
//
// The entropy source failing leaves no id to send; Generate panics rather
// than letting callers proceed with an empty correlation id.
func Generate() string {
	m, err := New()
	if err != nil {
		panic(err)
	}
	return m.ID
}
