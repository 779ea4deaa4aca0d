package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/raft-seat-reservation/internal/consensus"
)

// RaftPeerHandler exposes a Node's RequestVote/AppendEntries receivers on
// the internal peer router, per spec.md §6's peer RPC surface.
type RaftPeerHandler struct {
	Node *consensus.Node
}

func NewRaftPeerHandler(n *consensus.Node) *RaftPeerHandler {
	return &RaftPeerHandler{Node: n}
}

func (h *RaftPeerHandler) RequestVote(c echo.Context) error {
	var args consensus.RequestVoteArgs
	if err := c.Bind(&args); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return c.JSON(http.StatusOK, h.Node.RequestVote(args))
}

func (h *RaftPeerHandler) AppendEntries(c echo.Context) error {
	var args consensus.AppendEntriesArgs
	if err := c.Bind(&args); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return c.JSON(http.StatusOK, h.Node.AppendEntries(args))
}
