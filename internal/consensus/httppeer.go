package consensus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPPeer implements PeerClient over HTTP+JSON against another node's peer
// RPC surface (/raft/request-vote, /raft/append-entries).
type HTTPPeer struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPPeer builds a PeerClient for a peer reachable at baseURL (e.g.
// "http://10.0.0.2:8081").
func NewHTTPPeer(baseURL string) *HTTPPeer {
	return &HTTPPeer{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 2 * time.Second},
	}
}

func (p *HTTPPeer) post(ctx context.Context, path string, body, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("consensus: peer %s returned status %d", p.BaseURL, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *HTTPPeer) RequestVote(ctx context.Context, args RequestVoteArgs) (RequestVoteReply, error) {
	var reply RequestVoteReply
	err := p.post(ctx, "/raft/request-vote", args, &reply)
	return reply, err
}

func (p *HTTPPeer) AppendEntries(ctx context.Context, args AppendEntriesArgs) (AppendEntriesReply, error) {
	var reply AppendEntriesReply
	err := p.post(ctx, "/raft/append-entries", args, &reply)
	return reply, err
}
