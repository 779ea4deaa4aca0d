// Package consensus implements the leader-election and log-replication
// protocol: roles, persistent term/vote, volatile commit/apply indices,
// per-peer replication indices, and the request-vote / append-entries RPCs.
package consensus

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/raft-seat-reservation/internal/raftlog"
	"github.com/iliyamo/raft-seat-reservation/internal/statemachine"
)

// Role is one of follower, candidate, or leader.
type Role int

const (
	Follower Role = iota
	Candidate
	Leader
)

func (r Role) String() string {
	switch r {
	case Follower:
		return "follower"
	case Candidate:
		return "candidate"
	case Leader:
		return "leader"
	default:
		return "unknown"
	}
}

var (
	// ErrNotLeader is returned by Propose when the node is not the leader.
	ErrNotLeader = errors.New("consensus: not the Raft leader")
	// ErrLeadershipLost is returned to a waiter when the proposing node
	// steps down before the entry is applied.
	ErrLeadershipLost = errors.New("consensus: leadership lost before proposal was applied")
	// ErrProposalTimeout is returned when a proposal's deadline elapses
	// before it is applied.
	ErrProposalTimeout = errors.New("consensus: proposal timed out")
)

// TimingConfig carries the protocol's timers, tunable for tests.
type TimingConfig struct {
	HeartbeatInterval  time.Duration
	ElectionTimeoutMin time.Duration
	ElectionTimeoutMax time.Duration
	ProposalTimeout    time.Duration
}

// DefaultTiming matches spec.md §4.3's defaults.
func DefaultTiming() TimingConfig {
	return TimingConfig{
		HeartbeatInterval:  50 * time.Millisecond,
		ElectionTimeoutMin: 150 * time.Millisecond,
		ElectionTimeoutMax: 300 * time.Millisecond,
		ProposalTimeout:    2 * time.Second,
	}
}

// Node is one replica of the consensus-replicated log and state machine.
// All mutations to role/term/vote/log/commitIndex/applyIndex/nextIndex/
// matchIndex are serialized behind mu, matching spec.md §5's "single
// logical critical section per node".
type Node struct {
	id    string
	peers map[string]PeerClient
	log   *raftlog.Log
	sm    *statemachine.StateMachine
	cfg   TimingConfig

	mu          sync.Mutex
	role        Role
	currentTerm uint64
	votedFor    string
	commitIndex uint64
	applyIndex  uint64
	leaderID    string

	nextIndex  map[string]uint64
	matchIndex map[string]uint64
	waiters    map[uint64]chan error

	resetElection chan struct{}
	stopCh        chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

// NewNode constructs a Node. peers must not include the node's own id.
func NewNode(id string, peers map[string]PeerClient, l *raftlog.Log, sm *statemachine.StateMachine, cfg TimingConfig) *Node {
	return &Node{
		id:            id,
		peers:         peers,
		log:           l,
		sm:            sm,
		cfg:           cfg,
		role:          Follower,
		nextIndex:     make(map[string]uint64),
		matchIndex:    make(map[string]uint64),
		waiters:       make(map[uint64]chan error),
		resetElection: make(chan struct{}, 1),
		stopCh:        make(chan struct{}),
	}
}

// Start launches the node's background goroutines: the election timer, the
// leader heartbeat ticker, and the apply loop.
func (n *Node) Start() {
	n.wg.Add(3)
	go n.electionLoop()
	go n.heartbeatLoop()
	go n.applyLoop()
}

// Stop halts all background goroutines. Safe to call more than once.
func (n *Node) Stop() {
	n.stopOnce.Do(func() {
		close(n.stopCh)
	})
	n.wg.Wait()
}

// ID returns the node's own identifier.
func (n *Node) ID() string { return n.id }

// IsLeader reports whether this node currently believes it is the leader.
func (n *Node) IsLeader() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.role == Leader
}

// LeaderID returns the last known leader identifier, which may be stale.
func (n *Node) LeaderID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.leaderID
}

// CommitIndex and ApplyIndex are exposed for tests and observability.
func (n *Node) CommitIndex() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.commitIndex
}

func (n *Node) ApplyIndex() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.applyIndex
}

func (n *Node) CurrentTerm() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.currentTerm
}

// StateMachine exposes the underlying state machine for read-only queries
// that bypass consensus (spec.md §4.4's query/list/list_shows).
func (n *Node) StateMachine() *statemachine.StateMachine { return n.sm }

// stepDownLocked adopts a higher term observed from a peer and reverts to
// follower. Caller must hold mu.
func (n *Node) stepDownLocked(term uint64) {
	if term <= n.currentTerm {
		return
	}
	wasLeader := n.role == Leader
	n.currentTerm = term
	n.votedFor = ""
	n.role = Follower
	if wasLeader {
		n.failAllWaitersLocked(ErrLeadershipLost)
	}
}

// failAllWaitersLocked resolves every pending proposal waiter with err.
// Caller must hold mu.
func (n *Node) failAllWaitersLocked(err error) {
	for idx, ch := range n.waiters {
		ch <- err
		delete(n.waiters, idx)
	}
}

func (n *Node) signalElectionReset() {
	select {
	case n.resetElection <- struct{}{}:
	default:
	}
}

func (n *Node) fatalf(format string, args ...interface{}) {
	log.Fatalf("consensus["+n.id+"]: "+format, args...)
}
