package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"strings"

	golog "github.com/ipfs/go-log/v2"
)

var log = golog.Logger("platform")

// ErrAlreadyRunning indicates another pauser already watches the same draft
// room. Two pausers on one room would both click the pause control.
var ErrAlreadyRunning = errors.New("pauser already running for this draft room")

// InstanceGuard holds the single-instance lock.
type InstanceGuard struct {
	listener net.Listener
	address  string
}

// AcquireSingleInstance binds a localhost port derived from the app name and
// the draft room key. Pausers for different rooms can run side by side.
func AcquireSingleInstance(appName, room string) (*InstanceGuard, error) {
	address := fmt.Sprintf("127.0.0.1:%d", portFor(appName, room))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		log.Debugf("lock %s: %v", address, err)
		return nil, fmt.Errorf("%w (%s)", ErrAlreadyRunning, room)
	}
	return &InstanceGuard{listener: listener, address: address}, nil
}

// Release frees the lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	return guard.listener.Close()
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

// RoomKey normalizes a draft room URL so query strings and fragments do not
// produce distinct locks.
func RoomKey(url string) string {
	key := strings.ToLower(strings.TrimSpace(url))
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	return strings.TrimSuffix(key, "/")
}

func portFor(appName, room string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	_, _ = hash.Write([]byte{0})
	_, _ = hash.Write([]byte(RoomKey(room)))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
