package main // Entry point package

import (
	"log" // Logging

	"github.com/joho/godotenv" // Load .env (dev/local)
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/raft-seat-reservation/internal/authclient"
	"github.com/iliyamo/raft-seat-reservation/internal/config"
	"github.com/iliyamo/raft-seat-reservation/internal/consensus"
	"github.com/iliyamo/raft-seat-reservation/internal/coordinator"
	"github.com/iliyamo/raft-seat-reservation/internal/handler"
	"github.com/iliyamo/raft-seat-reservation/internal/paymentclient"
	"github.com/iliyamo/raft-seat-reservation/internal/queue"
	"github.com/iliyamo/raft-seat-reservation/internal/raftlog"
	"github.com/iliyamo/raft-seat-reservation/internal/repository"
	"github.com/iliyamo/raft-seat-reservation/internal/router"
	queuepub "github.com/iliyamo/raft-seat-reservation/internal/service"
	"github.com/iliyamo/raft-seat-reservation/internal/statemachine"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("info: .env not found; using defaults/env")
	}

	cfg := config.Load()
	nodeCfg := config.LoadNodeConfig()
	raftCfg := config.LoadRaftConfig()
	svcAddrs := config.LoadServiceAddrConfig()
	storageCfg := config.LoadStorageConfig()
	rateCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()
	rdb := config.NewRedisClient()

	l, err := raftlog.Open(storageCfg.RaftLogPath)
	if err != nil {
		log.Fatalf("booking-node[%s]: open raft log: %v", nodeCfg.ID, err)
	}
	sm, err := statemachine.New(storageCfg.StateSnapshotPath)
	if err != nil {
		log.Fatalf("booking-node[%s]: open state machine: %v", nodeCfg.ID, err)
	}

	peers := make(map[string]consensus.PeerClient, len(nodeCfg.Peers))
	for id, addr := range nodeCfg.Peers {
		peers[id] = consensus.NewHTTPPeer("http://" + addr)
	}

	timing := consensus.TimingConfig{
		HeartbeatInterval:  raftCfg.HeartbeatInterval,
		ElectionTimeoutMin: raftCfg.ElectionTimeoutMin,
		ElectionTimeoutMax: raftCfg.ElectionTimeoutMax,
		ProposalTimeout:    raftCfg.ProposalTimeout,
	}
	node := consensus.NewNode(nodeCfg.ID, peers, l, sm, timing)
	node.Start()
	defer node.Stop()

	auth := authclient.New(svcAddrs.AuthServiceAddr)
	payment := paymentclient.New(svcAddrs.PaymentServiceAddr)

	coord := coordinator.New(node, auth, payment, repository.IsAdmin, "USD")
	coord.Publish = queuepub.PublishReservationConfirmed

	go func() { _ = queue.StartReservationConsumer() }()

	e := echo.New()
	bookingHandler := handler.NewBookingHandler(coord)
	peerHandler := handler.NewRaftPeerHandler(node)
	router.RegisterBookingRoutes(e, bookingHandler, peerHandler, cfg, rateCfg, cacheCfg, rdb)

	log.Printf("booking-node[%s]: listening on %s, peers=%d", nodeCfg.ID, nodeCfg.BindAddr, len(peers))
	if err := e.Start(nodeCfg.BindAddr); err != nil {
		log.Fatal(err)
	}
}
