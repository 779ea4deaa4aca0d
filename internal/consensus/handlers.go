package consensus

// RequestVote is the receiver-side entry point for the peer RPC of the
// same name, wired into the booking node's peer HTTP handler.
func (n *Node) RequestVote(args RequestVoteArgs) RequestVoteReply {
	return n.handleRequestVote(args)
}

// AppendEntries is the receiver-side entry point for the peer RPC of the
// same name.
func (n *Node) AppendEntries(args AppendEntriesArgs) AppendEntriesReply {
	return n.handleAppendEntries(args)
}
