package consensus

import (
	"context"
	"math/rand"
	"time"
)

func (n *Node) electionLoop() {
	defer n.wg.Done()
	for {
		timeout := n.randomElectionTimeout()
		select {
		case <-time.After(timeout):
			// A leader does not hear its own heartbeats; only a non-leader
			// whose timer expires starts an election.
			if !n.IsLeader() {
				n.startElection()
			}
		case <-n.resetElection:
			// heartbeat or vote grant observed; restart the wait.
		case <-n.stopCh:
			return
		}
	}
}

func (n *Node) randomElectionTimeout() time.Duration {
	lo := n.cfg.ElectionTimeoutMin
	hi := n.cfg.ElectionTimeoutMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo)))
}

// startElection runs one candidacy: increments term, votes for self, and
// fans out RequestVote to every peer in parallel.
func (n *Node) startElection() {
	n.mu.Lock()
	n.role = Candidate
	n.currentTerm++
	n.votedFor = n.id
	n.leaderID = ""
	term := n.currentTerm
	lastIndex := n.log.LastIndex()
	lastTerm := n.log.LastTerm()
	peers := make(map[string]PeerClient, len(n.peers))
	for id, c := range n.peers {
		peers[id] = c
	}
	n.mu.Unlock()

	total := len(peers) + 1
	majority := total/2 + 1
	granted := 1 // vote for self

	if granted >= majority {
		n.becomeLeader(term)
		return
	}

	results := make(chan bool, len(peers))
	deadline := n.cfg.ElectionTimeoutMin / 2
	if deadline <= 0 {
		deadline = 75 * time.Millisecond
	}

	for id, client := range peers {
		go func(id string, c PeerClient) {
			ctx, cancel := context.WithTimeout(context.Background(), deadline)
			defer cancel()
			reply, err := c.RequestVote(ctx, RequestVoteArgs{
				Term:         term,
				CandidateID:  n.id,
				LastLogIndex: lastIndex,
				LastLogTerm:  lastTerm,
			})
			if err != nil {
				results <- false
				return
			}
			n.mu.Lock()
			if reply.Term > n.currentTerm {
				n.stepDownLocked(reply.Term)
			}
			n.mu.Unlock()
			results <- reply.VoteGranted
		}(id, client)
	}

	timer := time.NewTimer(deadline + 10*time.Millisecond)
	defer timer.Stop()
	received := 0
	for received < len(peers) {
		select {
		case g := <-results:
			received++
			if g {
				granted++
			}
		case <-timer.C:
			received = len(peers)
		case <-n.stopCh:
			return
		}
	}

	n.mu.Lock()
	stillCandidate := n.role == Candidate && n.currentTerm == term
	n.mu.Unlock()
	if !stillCandidate {
		return
	}
	if granted >= majority {
		n.becomeLeader(term)
	}
	// Otherwise: split vote or denied; fall through to the next election
	// timeout, per spec.md §4.3.
}

func (n *Node) becomeLeader(term uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.role != Candidate || n.currentTerm != term {
		return
	}
	n.role = Leader
	n.leaderID = n.id
	lastIndex := n.log.LastIndex()
	for id := range n.peers {
		n.nextIndex[id] = lastIndex + 1
		n.matchIndex[id] = 0
	}
	go n.broadcastAppendEntries()
}

// handleRequestVote implements spec.md §4.3's RequestVote receiver rules.
func (n *Node) handleRequestVote(args RequestVoteArgs) RequestVoteReply {
	n.mu.Lock()
	defer n.mu.Unlock()

	if args.Term < n.currentTerm {
		return RequestVoteReply{Term: n.currentTerm, VoteGranted: false}
	}
	if args.Term > n.currentTerm {
		n.stepDownLocked(args.Term)
	}

	lastIndex := n.log.LastIndex()
	lastTerm := n.log.LastTerm()
	logOK := args.LastLogTerm > lastTerm || (args.LastLogTerm == lastTerm && args.LastLogIndex >= lastIndex)

	canVote := n.votedFor == "" || n.votedFor == args.CandidateID
	if canVote && logOK {
		n.votedFor = args.CandidateID
		n.signalElectionReset()
		return RequestVoteReply{Term: n.currentTerm, VoteGranted: true}
	}
	return RequestVoteReply{Term: n.currentTerm, VoteGranted: false}
}
