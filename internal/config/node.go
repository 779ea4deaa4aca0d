package config

import (
	"strings"
	"time"

	"github.com/iliyamo/raft-seat-reservation/internal/consensus"
)

// NodeConfig identifies a single booking node within the Raft cluster.
type NodeConfig struct {
	ID        string
	BindAddr  string
	Peers     map[string]string // peer id -> host:port
}

// RaftConfig carries the protocol's tunable timers.
type RaftConfig struct {
	HeartbeatInterval  time.Duration
	ElectionTimeoutMin time.Duration
	ElectionTimeoutMax time.Duration
	ProposalTimeout    time.Duration
}

// ServiceAddrConfig locates the external auth/payment façades this node
// calls out to.
type ServiceAddrConfig struct {
	AuthServiceAddr    string
	PaymentServiceAddr string
}

// StorageConfig locates the durable files the consensus node owns.
type StorageConfig struct {
	RaftLogPath        string
	StateSnapshotPath  string
}

// LoadNodeConfig reads NODE_ID, NODE_BIND_ADDR and NODE_PEERS
// ("id1=host:port,id2=host:port,...").
func LoadNodeConfig() NodeConfig {
	peers := make(map[string]string)
	raw := must("NODE_PEERS")
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		peers[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return NodeConfig{
		ID:       must("NODE_ID"),
		BindAddr: must("NODE_BIND_ADDR"),
		Peers:    peers,
	}
}

// LoadRaftConfig reads HEARTBEAT_INTERVAL_MS, ELECTION_TIMEOUT_MIN_MS/MAX_MS
// and PROPOSAL_TIMEOUT_MS, falling back to consensus.DefaultTiming's spec
// defaults when unset.
func LoadRaftConfig() RaftConfig {
	d := consensus.DefaultTiming()
	return RaftConfig{
		HeartbeatInterval:  time.Duration(envInt("HEARTBEAT_INTERVAL_MS", int(d.HeartbeatInterval/time.Millisecond))) * time.Millisecond,
		ElectionTimeoutMin: time.Duration(envInt("ELECTION_TIMEOUT_MIN_MS", int(d.ElectionTimeoutMin/time.Millisecond))) * time.Millisecond,
		ElectionTimeoutMax: time.Duration(envInt("ELECTION_TIMEOUT_MAX_MS", int(d.ElectionTimeoutMax/time.Millisecond))) * time.Millisecond,
		ProposalTimeout:    time.Duration(envInt("PROPOSAL_TIMEOUT_MS", int(d.ProposalTimeout/time.Millisecond))) * time.Millisecond,
	}
}

// LoadServiceAddrConfig reads AUTH_SERVICE_ADDR and PAYMENT_SERVICE_ADDR.
func LoadServiceAddrConfig() ServiceAddrConfig {
	return ServiceAddrConfig{
		AuthServiceAddr:    must("AUTH_SERVICE_ADDR"),
		PaymentServiceAddr: must("PAYMENT_SERVICE_ADDR"),
	}
}

// LoadStorageConfig reads RAFT_LOG_PATH and STATE_SNAPSHOT_PATH.
func LoadStorageConfig() StorageConfig {
	return StorageConfig{
		RaftLogPath:       envStr("RAFT_LOG_PATH", "data/raft.log"),
		StateSnapshotPath: envStr("STATE_SNAPSHOT_PATH", "data/state.snapshot.json"),
	}
}
