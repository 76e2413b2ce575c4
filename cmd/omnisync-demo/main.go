// Command omnisync-demo wires two in-process replicas together, exchanges
// deltas between them, and runs a coordinated reclamation cycle. It exists
// to exercise the library end to end without standing up any transport:
// sockets and wire framing are left to the caller.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"time"

	"omnisync/pkg/config"
	"omnisync/pkg/frontier"
	"omnisync/pkg/rga"
	"omnisync/pkg/util/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional, defaults are used otherwise)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Read(*configPath)
		if err != nil {
			panic(err)
		}
		cfg = loaded
	}
	cfg.PopulateDefaults()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	logging.InitDefault(cfg.Node.ReplicaID)

	const peerReplicaID = 2
	reclaimCfg := rga.ReclaimConfig{
		AutoGC:             cfg.Sequence.Reclamation.AutoGC,
		TombstoneThreshold: cfg.Sequence.Reclamation.TombstoneThreshold,
		MinAge:             cfg.Sequence.Reclamation.MinAge,
	}
	orphanCfg := rga.OrphanConfig{
		MaxBuffer: cfg.Sequence.Orphans.MaxBuffer,
		MaxAge:    cfg.Sequence.Orphans.MaxAge,
	}

	local := rga.New(cfg.Node.ReplicaID, reclaimCfg, orphanCfg)
	remote := rga.New(peerReplicaID, reclaimCfg, orphanCfg)

	for _, b := range []byte("hello") {
		local.Insert(local.Len(), b)
	}
	local.Delete(0)

	coord := frontier.New(cfg.Node.ReplicaID, frontier.Config{
		HeartbeatInterval: time.Duration(cfg.Coordinator.HeartbeatIntervalMs) * time.Millisecond,
		PeerTimeout:       time.Duration(cfg.Coordinator.PeerTimeoutMs) * time.Millisecond,
		GCInterval:        time.Duration(cfg.Coordinator.GCIntervalMs) * time.Millisecond,
		AutoGC:            cfg.Coordinator.AutoGC,
		MinPeers:          cfg.Coordinator.MinPeers,
	})
	coord.RegisterPeer(peerReplicaID)

	delta := local.Delta(remote.VersionMap())
	remote.ApplyDelta(delta)

	coord.UpdateSelf(local.VersionMap())
	coord.UpdatePeerState(peerReplicaID, remote.VersionMap())

	removed := coord.Perform(local)

	slog.Info("demo run complete",
		"local_visible", local.String(),
		"remote_visible", remote.String(),
		"tombstones_removed", removed,
	)
	fmt.Println(local.DebugDump())
}
