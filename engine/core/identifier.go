package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	ownersMu sync.Mutex
	owners   = map[uuid.UUID]interface{}{}
)

// IdentifierAcquireNewID registers owner under a fresh identifier.
func IdentifierAcquireNewID(owner interface{}) uuid.UUID {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	id := uuid.New()
	owners[id] = owner
	return id
}

func IdentifierReleaseID(id uuid.UUID) error {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	if _, ok := owners[id]; !ok {
		return fmt.Errorf("identifier `%s` is not registered. Nothing was done", id)
	}
	delete(owners, id)
	return nil
}

// IdentifierOwner returns the owner registered under id, if any.
func IdentifierOwner(id uuid.UUID) (interface{}, bool) {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	o, ok := owners[id]
	return o, ok
}

// IdentifierLiveCount returns how many identifiers are currently registered.
func IdentifierLiveCount() int {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	return len(owners)
}
