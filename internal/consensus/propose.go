package consensus

import (
	"time"
)

// Propose implements spec.md §4.3's client proposal protocol. It appends
// the command to the local log, triggers replication, and blocks until the
// entry is committed and applied, a higher term steps this node down, or
// the deadline elapses. It returns the entry's log index on success.
func (n *Node) Propose(command []byte) (uint64, error) {
	n.mu.Lock()
	if n.role != Leader {
		n.mu.Unlock()
		return 0, ErrNotLeader
	}
	term := n.currentTerm
	entry, err := n.log.Append(term, command)
	if err != nil {
		n.mu.Unlock()
		return 0, err
	}
	waitCh := make(chan error, 1)
	n.waiters[entry.Index] = waitCh
	// The leader's own log always counts toward the majority; with no
	// peers (or peers slower than this append) this is the only place
	// commitIndex can advance, since handleAppendEntriesReply only fires
	// on a peer reply.
	n.advanceCommitIndexLocked()
	n.mu.Unlock()

	go n.broadcastAppendEntries()

	timer := time.NewTimer(n.cfg.ProposalTimeout)
	defer timer.Stop()

	select {
	case err := <-waitCh:
		return entry.Index, err
	case <-timer.C:
		n.mu.Lock()
		delete(n.waiters, entry.Index)
		n.mu.Unlock()
		return entry.Index, ErrProposalTimeout
	case <-n.stopCh:
		return entry.Index, ErrLeadershipLost
	}
}

func (n *Node) applyLoop() {
	defer n.wg.Done()
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n.applyCommitted()
		case <-n.stopCh:
			return
		}
	}
}

// applyCommitted applies every entry between applyIndex and commitIndex, in
// order, resolving any waiter registered for that index. A missing local
// entry for a committed index is the "corrupted log" fatal condition
// spec.md §7 describes.
func (n *Node) applyCommitted() {
	for {
		n.mu.Lock()
		if n.applyIndex >= n.commitIndex {
			n.mu.Unlock()
			return
		}
		idx := n.applyIndex + 1
		stillLeader := n.role == Leader
		currentTerm := n.currentTerm
		n.mu.Unlock()

		entry, ok := n.log.Get(idx)
		if !ok {
			n.fatalf("commit index %d has no local log entry", idx)
		}

		err := n.sm.Apply(entry.Command)
		if err != nil {
			n.fatalf("state machine apply failed at index %d: %v", idx, err)
		}

		n.mu.Lock()
		n.applyIndex = idx
		if ch, ok := n.waiters[idx]; ok {
			delete(n.waiters, idx)
			if stillLeader && n.role == Leader && n.currentTerm == currentTerm {
				ch <- nil
			} else {
				ch <- ErrLeadershipLost
			}
		}
		n.mu.Unlock()
	}
}
