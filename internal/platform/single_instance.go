package platform

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

// ErrNotRunning indicates that no instance holds the lock.
var ErrNotRunning = errors.New("no running instance")

// Owner describes the process holding the single-instance lock.
type Owner struct {
	PID     int
	Surface string
}

// InstanceGuard holds the single-instance lock and answers probes with its owner.
type InstanceGuard struct {
	listener net.Listener
	address  string
	owner    Owner
	done     chan struct{}
	once     sync.Once
}

// AcquireSingleInstance attempts to bind a deterministic localhost port.
func AcquireSingleInstance(appName, surface string) (*InstanceGuard, error) {
	listener, err := net.Listen("tcp", guardAddress(appName))
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	guard := &InstanceGuard{
		listener: listener,
		address:  listener.Addr().String(),
		owner:    Owner{PID: os.Getpid(), Surface: surface},
		done:     make(chan struct{}),
	}
	go guard.serve()
	return guard, nil
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	var err error
	guard.once.Do(func() {
		close(guard.done)
		err = guard.listener.Close()
	})
	return err
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

func (guard *InstanceGuard) serve() {
	for {
		conn, err := guard.listener.Accept()
		if err != nil {
			select {
			case <-guard.done:
				return
			default:
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
		_, _ = fmt.Fprintf(conn, "%d %s\n", guard.owner.PID, guard.owner.Surface)
		_ = conn.Close()
	}
}

// Probe asks a running instance who it is.
func Probe(appName string, timeout time.Duration) (Owner, error) {
	conn, err := net.DialTimeout("tcp", guardAddress(appName), timeout)
	if err != nil {
		return Owner{}, ErrNotRunning
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return Owner{}, fmt.Errorf("read instance reply: %w", err)
	}
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Owner{}, fmt.Errorf("unexpected instance reply %q", strings.TrimSpace(line))
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return Owner{}, fmt.Errorf("parse instance pid: %w", err)
	}
	return Owner{PID: pid, Surface: fields[1]}, nil
}

func guardAddress(appName string) string {
	return fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
