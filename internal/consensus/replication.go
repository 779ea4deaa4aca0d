package consensus

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/raft-seat-reservation/internal/raftlog"
)

func (n *Node) heartbeatLoop() {
	defer n.wg.Done()
	ticker := time.NewTicker(n.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n.mu.Lock()
			isLeader := n.role == Leader
			n.mu.Unlock()
			if isLeader {
				n.broadcastAppendEntries()
			}
		case <-n.stopCh:
			return
		}
	}
}

// broadcastAppendEntries sends append-entries (heartbeat or catch-up) to
// every peer in parallel, per spec.md §4.3's replication algorithm.
func (n *Node) broadcastAppendEntries() {
	n.mu.Lock()
	if n.role != Leader {
		n.mu.Unlock()
		return
	}
	term := n.currentTerm
	leaderCommit := n.commitIndex
	peers := make(map[string]PeerClient, len(n.peers))
	for id, c := range n.peers {
		peers[id] = c
	}
	type plan struct {
		prevIndex uint64
		prevTerm  uint64
		entries   []raftlog.Entry
	}
	plans := make(map[string]plan, len(peers))
	for id := range peers {
		next := n.nextIndex[id]
		if next == 0 {
			next = n.log.LastIndex() + 1
		}
		prevIndex := next - 1
		prevTerm := n.log.TermAt(prevIndex)
		entries := n.log.EntriesFrom(next)
		plans[id] = plan{prevIndex: prevIndex, prevTerm: prevTerm, entries: entries}
	}
	n.mu.Unlock()

	deadline := n.cfg.HeartbeatInterval * 4
	for id, client := range peers {
		p := plans[id]
		go func(id string, c PeerClient, p plan) {
			ctx, cancel := context.WithTimeout(context.Background(), deadline)
			defer cancel()
			reply, err := c.AppendEntries(ctx, AppendEntriesArgs{
				Term:         term,
				LeaderID:     n.id,
				PrevLogIndex: p.prevIndex,
				PrevLogTerm:  p.prevTerm,
				Entries:      p.entries,
				LeaderCommit: leaderCommit,
			})
			if err != nil {
				return // peer unreachable; retried on next heartbeat
			}
			n.handleAppendEntriesReply(id, term, p, reply)
		}(id, client, p)
	}
}

func (n *Node) handleAppendEntriesReply(peerID string, sentTerm uint64, p struct {
	prevIndex uint64
	prevTerm  uint64
	entries   []raftlog.Entry
}, reply AppendEntriesReply) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if reply.Term > n.currentTerm {
		n.stepDownLocked(reply.Term)
		return
	}
	if n.role != Leader || n.currentTerm != sentTerm {
		return
	}

	if reply.Success {
		matched := p.prevIndex + uint64(len(p.entries))
		if matched > n.matchIndex[peerID] {
			n.matchIndex[peerID] = matched
		}
		n.nextIndex[peerID] = n.matchIndex[peerID] + 1
		n.advanceCommitIndexLocked()
		return
	}

	// Log inconsistency: back off next_index and retry on the next tick.
	// The peer's last index is used as a hint only when it lies below the
	// probed prev_log_index; otherwise step back by one.
	next := p.prevIndex
	if reply.MatchIndex < p.prevIndex {
		next = reply.MatchIndex + 1
	}
	if next >= 1 && next < n.nextIndex[peerID] {
		n.nextIndex[peerID] = next
	}
}

// advanceCommitIndexLocked implements spec.md §4.3's commit rule: the
// largest N with a majority match_index >= N whose entry term equals the
// leader's current term. Caller must hold mu.
func (n *Node) advanceCommitIndexLocked() {
	matches := make([]uint64, 0, len(n.peers)+1)
	matches = append(matches, n.log.LastIndex()) // leader always matches its own log
	for _, m := range n.matchIndex {
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i] > matches[j] })
	majorityIdx := len(matches) / 2 // matches is sorted descending; element at this index is the majority value
	candidate := matches[majorityIdx]
	if candidate <= n.commitIndex {
		return
	}
	if n.log.TermAt(candidate) != n.currentTerm {
		return
	}
	n.commitIndex = candidate
}

// handleAppendEntries implements spec.md §4.3's AppendEntries receiver
// rules.
func (n *Node) handleAppendEntries(args AppendEntriesArgs) AppendEntriesReply {
	n.mu.Lock()
	defer n.mu.Unlock()

	if args.Term < n.currentTerm {
		return AppendEntriesReply{Term: n.currentTerm, Success: false}
	}

	n.stepDownLocked(args.Term)
	n.currentTerm = args.Term // accept even an equal term from the acting leader
	n.role = Follower
	n.leaderID = args.LeaderID
	n.signalElectionReset()

	if args.PrevLogIndex > 0 {
		entry, ok := n.log.Get(args.PrevLogIndex)
		if !ok || entry.Term != args.PrevLogTerm {
			return AppendEntriesReply{Term: n.currentTerm, Success: false, MatchIndex: n.log.LastIndex()}
		}
	}

	if len(args.Entries) > 0 {
		if err := n.log.AppendReplicated(args.PrevLogIndex, args.Entries); err != nil {
			return AppendEntriesReply{Term: n.currentTerm, Success: false, MatchIndex: n.log.LastIndex()}
		}
	}

	lastLocal := n.log.LastIndex()
	if args.LeaderCommit > n.commitIndex {
		if args.LeaderCommit < lastLocal {
			n.commitIndex = args.LeaderCommit
		} else {
			n.commitIndex = lastLocal
		}
	}

	return AppendEntriesReply{Term: n.currentTerm, Success: true, MatchIndex: lastLocal}
}
