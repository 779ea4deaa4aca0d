package coordinator

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iliyamo/raft-seat-reservation/internal/consensus"
	"github.com/iliyamo/raft-seat-reservation/internal/raftlog"
	"github.com/iliyamo/raft-seat-reservation/internal/statemachine"
)

type fakeAuth struct{ admin string }

func (f *fakeAuth) ValidateSession(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	if token == "admin-token" {
		return f.admin, true, nil
	}
	return token, true, nil // test tokens double as user ids for simplicity
}

type fakePayment struct{ counter int64 }

func (f *fakePayment) ProcessPayment(ctx context.Context, userID string, amountCents uint32, currency, card string) (string, string, error) {
	id := atomic.AddInt64(&f.counter, 1)
	if card == "9999" {
		return fakeTxnID(id), "FAILED", nil
	}
	return fakeTxnID(id), "COMPLETED", nil
}

func fakeTxnID(n int64) string {
	return "txn-" + strconv.FormatInt(n, 10)
}

func newSingleNodeCoordinator(t *testing.T) (*Coordinator, *consensus.Node) {
	t.Helper()
	return newSingleNodeCoordinatorWithTiming(t, consensus.TimingConfig{
		HeartbeatInterval:  10 * time.Millisecond,
		ElectionTimeoutMin: 30 * time.Millisecond,
		ElectionTimeoutMax: 60 * time.Millisecond,
		ProposalTimeout:    2 * time.Second,
	})
}

// flakyPeer is a PeerClient that grants votes and replicates successfully
// while alive, and fails every RPC once silenced, simulating a peer that
// stops answering mid-session. handleAppendEntriesReply only reads
// reply.Success on the happy path (matched index is recomputed from the
// request), so a bare Success:true is enough to drive replication forward.
type flakyPeer struct {
	mu    sync.Mutex
	alive bool
}

func newFlakyPeer() *flakyPeer { return &flakyPeer{alive: true} }

func (p *flakyPeer) silence() {
	p.mu.Lock()
	p.alive = false
	p.mu.Unlock()
}

func (p *flakyPeer) RequestVote(ctx context.Context, args consensus.RequestVoteArgs) (consensus.RequestVoteReply, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.alive {
		return consensus.RequestVoteReply{}, errPeerSilenced
	}
	return consensus.RequestVoteReply{Term: args.Term, VoteGranted: true}, nil
}

func (p *flakyPeer) AppendEntries(ctx context.Context, args consensus.AppendEntriesArgs) (consensus.AppendEntriesReply, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.alive {
		return consensus.AppendEntriesReply{}, errPeerSilenced
	}
	return consensus.AppendEntriesReply{Term: args.Term, Success: true}, nil
}

var errPeerSilenced = errors.New("flaky peer: silenced")

// newTwoNodeCoordinatorWithFlakyPeer wires a coordinator to a two-node
// cluster (this node plus one flakyPeer) so a test can let the peer
// replicate normally at first and then silence it mid-test to force a
// proposal to stall, since a genuinely peerless node commits its own
// entries immediately and can never be made to time out.
func newTwoNodeCoordinatorWithFlakyPeer(t *testing.T, timing consensus.TimingConfig) (*Coordinator, *flakyPeer) {
	t.Helper()
	l, err := raftlog.Open("")
	if err != nil {
		t.Fatal(err)
	}
	sm, err := statemachine.New("")
	if err != nil {
		t.Fatal(err)
	}
	peer := newFlakyPeer()
	node := consensus.NewNode("only", map[string]consensus.PeerClient{"other": peer}, l, sm, timing)
	node.Start()
	t.Cleanup(node.Stop)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && !node.IsLeader() {
		time.Sleep(2 * time.Millisecond)
	}
	if !node.IsLeader() {
		t.Fatal("node never became leader")
	}

	coord := New(node, &fakeAuth{admin: "admin-id"}, &fakePayment{}, func(uid string) bool { return uid == "admin-id" }, "USD")
	return coord, peer
}

func newSingleNodeCoordinatorWithTiming(t *testing.T, timing consensus.TimingConfig) (*Coordinator, *consensus.Node) {
	t.Helper()
	l, err := raftlog.Open("")
	if err != nil {
		t.Fatal(err)
	}
	sm, err := statemachine.New("")
	if err != nil {
		t.Fatal(err)
	}
	node := consensus.NewNode("only", map[string]consensus.PeerClient{}, l, sm, timing)
	node.Start()
	t.Cleanup(node.Stop)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && !node.IsLeader() {
		time.Sleep(2 * time.Millisecond)
	}
	if !node.IsLeader() {
		t.Fatal("single node never became leader")
	}

	coord := New(node, &fakeAuth{admin: "admin-id"}, &fakePayment{}, func(uid string) bool { return uid == "admin-id" }, "USD")
	return coord, node
}

func TestScenarioA_SingleLeaderBooking(t *testing.T) {
	coord, _ := newSingleNodeCoordinator(t)
	ctx := context.Background()

	if err := coord.AddShow(ctx, "admin-token", "s1", 10, 100); err != nil {
		t.Fatalf("add_show failed: %v", err)
	}

	res, err := coord.Book(ctx, "userU", "s1", 3, "1234")
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}
	if res.UserID != "userU" || res.PriceCents != 100 || res.SeatID != 3 {
		t.Fatalf("unexpected booking result: %+v", res)
	}

	q, err := coord.Query("s1", 3)
	if err != nil || !q.Reserved || q.UserID != "userU" {
		t.Fatalf("unexpected query after booking: %+v err=%v", q, err)
	}
}

func TestScenarioB_ConcurrentRaceExactlyOneWinner(t *testing.T) {
	coord, _ := newSingleNodeCoordinator(t)
	ctx := context.Background()
	if err := coord.AddShow(ctx, "admin-token", "s1", 10, 100); err != nil {
		t.Fatal(err)
	}

	const n = 30
	var wg sync.WaitGroup
	var successes int64
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := coord.Book(ctx, userToken(i), "s1", 1, "1234")
			if err == nil {
				atomic.AddInt64(&successes, 1)
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly 1 success, got %d", successes)
	}
	q, err := coord.Query("s1", 1)
	if err != nil || !q.Reserved {
		t.Fatalf("expected seat 1 reserved after race: %+v err=%v", q, err)
	}
}

func userToken(i int) string {
	return "user-" + string(rune('A'+i%26)) + string(rune('0'+i/26))
}

func TestScenarioC_PaymentFailureDoesNotReserve(t *testing.T) {
	coord, _ := newSingleNodeCoordinator(t)
	ctx := context.Background()
	if err := coord.AddShow(ctx, "admin-token", "s1", 10, 100); err != nil {
		t.Fatal(err)
	}

	_, err := coord.Book(ctx, "userU", "s1", 5, "9999")
	var cerr *Error
	if err == nil {
		t.Fatal("expected payment failure error")
	}
	if ok := asCoordErr(err, &cerr); !ok || cerr.Kind != KindPaymentFailed {
		t.Fatalf("expected PaymentFailed, got %v", err)
	}

	q, err := coord.Query("s1", 5)
	if err != nil || q.Reserved {
		t.Fatalf("expected seat 5 to remain available: %+v err=%v", q, err)
	}
}

func asCoordErr(err error, out **Error) bool {
	ce, ok := err.(*Error)
	if !ok {
		return false
	}
	*out = ce
	return true
}

func TestScenarioF_AdminGating(t *testing.T) {
	coord, _ := newSingleNodeCoordinator(t)
	ctx := context.Background()

	err := coord.AddShow(ctx, "not-admin-token", "s1", 10, 100)
	var cerr *Error
	if !asCoordErr(err, &cerr) || cerr.Kind != KindPermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}

	shows := coord.ListShows()
	if len(shows) != 0 {
		t.Fatalf("expected catalog unchanged, got %+v", shows)
	}
}

// TestBookingChargedButProposalTimesOutReportsInternal covers spec.md §9's
// charged-but-not-committed case: the payment already succeeded, but the
// proposal never commits. AddShow replicates normally against a live peer;
// the peer is then silenced so Book's own proposal can never reach a
// majority and must time out. Per spec.md §7/§9 this must surface as
// Internal, not ProposalTimeout, since a refund is out of scope and the
// client must not be told to simply retry a request that already charged
// its card.
func TestBookingChargedButProposalTimesOutReportsInternal(t *testing.T) {
	coord, peer := newTwoNodeCoordinatorWithFlakyPeer(t, consensus.TimingConfig{
		HeartbeatInterval:  10 * time.Millisecond,
		ElectionTimeoutMin: 30 * time.Millisecond,
		ElectionTimeoutMax: 60 * time.Millisecond,
		ProposalTimeout:    50 * time.Millisecond,
	})
	ctx := context.Background()
	if err := coord.AddShow(ctx, "admin-token", "s1", 10, 100); err != nil {
		t.Fatal(err)
	}

	peer.silence()

	_, err := coord.Book(ctx, "userU", "s1", 1, "1234")
	var cerr *Error
	if !asCoordErr(err, &cerr) || cerr.Kind != KindInternal {
		t.Fatalf("expected Internal for a charged-but-uncommitted booking, got %v", err)
	}
}

func TestBookingAgainstUnknownShow(t *testing.T) {
	coord, _ := newSingleNodeCoordinator(t)
	_, err := coord.Book(context.Background(), "userU", "missing", 1, "1234")
	var cerr *Error
	if !asCoordErr(err, &cerr) || cerr.Kind != KindUnknownShow {
		t.Fatalf("expected UnknownShow, got %v", err)
	}
}
