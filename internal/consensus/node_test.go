package consensus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/iliyamo/raft-seat-reservation/internal/raftlog"
	"github.com/iliyamo/raft-seat-reservation/internal/statemachine"
)

// fakePeer routes RPCs directly to another in-process Node, used so
// election/replication/commit/apply can be exercised without real sockets.
type fakePeer struct {
	target *Node
}

func (f *fakePeer) RequestVote(ctx context.Context, args RequestVoteArgs) (RequestVoteReply, error) {
	return f.target.RequestVote(args), nil
}

func (f *fakePeer) AppendEntries(ctx context.Context, args AppendEntriesArgs) (AppendEntriesReply, error) {
	return f.target.AppendEntries(args), nil
}

func fastTiming() TimingConfig {
	return TimingConfig{
		HeartbeatInterval:  10 * time.Millisecond,
		ElectionTimeoutMin: 40 * time.Millisecond,
		ElectionTimeoutMax: 80 * time.Millisecond,
		ProposalTimeout:    2 * time.Second,
	}
}

// newCluster wires n nodes together with fake in-process peers.
func newCluster(t *testing.T, n int) []*Node {
	t.Helper()
	nodes := make([]*Node, n)
	for i := 0; i < n; i++ {
		l, err := raftlog.Open("")
		if err != nil {
			t.Fatal(err)
		}
		sm, err := statemachine.New("")
		if err != nil {
			t.Fatal(err)
		}
		nodes[i] = NewNode(idFor(i), map[string]PeerClient{}, l, sm, fastTiming())
	}
	for i := range nodes {
		for j := range nodes {
			if i == j {
				continue
			}
			nodes[i].peers[idFor(j)] = &fakePeer{target: nodes[j]}
		}
	}
	for _, n := range nodes {
		n.Start()
	}
	t.Cleanup(func() {
		for _, n := range nodes {
			n.Stop()
		}
	})
	return nodes
}

func idFor(i int) string {
	return string(rune('A' + i))
}

func waitForLeader(t *testing.T, nodes []*Node, timeout time.Duration) *Node {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, n := range nodes {
			if n.IsLeader() {
				return n
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no leader elected within timeout")
	return nil
}

func TestElectsExactlyOneLeader(t *testing.T) {
	nodes := newCluster(t, 3)
	waitForLeader(t, nodes, 2*time.Second)

	count := 0
	for _, n := range nodes {
		if n.IsLeader() {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one leader, found %d", count)
	}
}

func TestProposeReplicatesAndApplies(t *testing.T) {
	nodes := newCluster(t, 3)
	leader := waitForLeader(t, nodes, 2*time.Second)

	cmd, _ := json.Marshal(statemachine.Command{
		Type: statemachine.CommandAddShow, ShowID: "s1", TotalSeats: 10, PriceCents: 100,
	})
	idx, err := leader.Propose(cmd)
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}

	deadline := time.Now().Add(time.Second)
	for _, n := range nodes {
		for time.Now().Before(deadline) && n.ApplyIndex() < idx {
			time.Sleep(5 * time.Millisecond)
		}
		res := n.StateMachine().Query("s1", 1)
		if !res.Exists {
			t.Fatalf("node %s did not apply add_show", n.ID())
		}
	}
}

func TestProposeOnFollowerFails(t *testing.T) {
	nodes := newCluster(t, 3)
	waitForLeader(t, nodes, 2*time.Second)

	for _, n := range nodes {
		if !n.IsLeader() {
			_, err := n.Propose([]byte("x"))
			if err != ErrNotLeader {
				t.Fatalf("expected ErrNotLeader, got %v", err)
			}
			return
		}
	}
}

func TestFailoverElectsNewLeaderAfterStop(t *testing.T) {
	nodes := newCluster(t, 3)
	first := waitForLeader(t, nodes, 2*time.Second)
	first.Stop()

	deadline := time.Now().Add(2 * time.Second)
	var second *Node
	for time.Now().Before(deadline) {
		for _, n := range nodes {
			if n != first && n.IsLeader() {
				second = n
			}
		}
		if second != nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if second == nil {
		t.Fatal("no new leader elected after original leader stopped")
	}
	if second.ID() == first.ID() {
		t.Fatal("expected a different node to become leader")
	}
}

func TestApplyIndexNeverExceedsCommitIndex(t *testing.T) {
	nodes := newCluster(t, 3)
	leader := waitForLeader(t, nodes, 2*time.Second)

	cmd, _ := json.Marshal(statemachine.Command{Type: statemachine.CommandAddShow, ShowID: "s1", TotalSeats: 5, PriceCents: 50})
	if _, err := leader.Propose(cmd); err != nil {
		t.Fatal(err)
	}
	for _, n := range nodes {
		if n.ApplyIndex() > n.CommitIndex() {
			t.Fatalf("node %s applyIndex %d > commitIndex %d", n.ID(), n.ApplyIndex(), n.CommitIndex())
		}
	}
}
