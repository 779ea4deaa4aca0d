package consensus

import (
	"context"

	"github.com/iliyamo/raft-seat-reservation/internal/raftlog"
)

// RequestVoteArgs is the request-vote RPC request.
type RequestVoteArgs struct {
	Term         uint64 `json:"term"`
	CandidateID  string `json:"candidate_id"`
	LastLogIndex uint64 `json:"last_log_index"`
	LastLogTerm  uint64 `json:"last_log_term"`
}

// RequestVoteReply is the request-vote RPC response.
type RequestVoteReply struct {
	Term        uint64 `json:"term"`
	VoteGranted bool   `json:"vote_granted"`
}

// AppendEntriesArgs is the append-entries RPC request.
type AppendEntriesArgs struct {
	Term         uint64          `json:"term"`
	LeaderID     string          `json:"leader_id"`
	PrevLogIndex uint64          `json:"prev_log_index"`
	PrevLogTerm  uint64          `json:"prev_log_term"`
	Entries      []raftlog.Entry `json:"entries"`
	LeaderCommit uint64          `json:"leader_commit"`
}

// AppendEntriesReply is the append-entries RPC response.
type AppendEntriesReply struct {
	Term       uint64 `json:"term"`
	Success    bool   `json:"success"`
	MatchIndex uint64 `json:"match_index"`
}

// PeerClient is how a Node reaches one peer. httppeer.go implements it over
// HTTP+JSON; tests use an in-process fake.
type PeerClient interface {
	RequestVote(ctx context.Context, args RequestVoteArgs) (RequestVoteReply, error)
	AppendEntries(ctx context.Context, args AppendEntriesArgs) (AppendEntriesReply, error)
}
