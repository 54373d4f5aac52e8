// Package egress discovers the public address traffic currently leaves
// through, which tells which tunnel carries the default route.
package egress

import (
	"context"
	"fmt"
	"net"

	externalip "github.com/glendc/go-external-ip"
)

type Resolver interface {
	ExternalIP(ctx context.Context) (net.IP, error)
}

// Consensus is the lookup behind a Resolver, satisfied by
// *externalip.Consensus.
type Consensus interface {
	ExternalIP() (net.IP, error)
}

type consensusResolver struct {
	consensus Consensus
}

// NewResolver asks the default set of public IP services.
func NewResolver() Resolver {
	return NewConsensusResolver(externalip.DefaultConsensus(nil, nil))
}

func NewConsensusResolver(consensus Consensus) Resolver {
	return &consensusResolver{
		consensus: consensus,
	}
}

func (r *consensusResolver) ExternalIP(ctx context.Context) (net.IP, error) {
	type result struct {
		ip  net.IP
		err error
	}

	resultChan := make(chan result, 1)
	go func() {
		ip, err := r.consensus.ExternalIP()
		resultChan <- result{ip: ip, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.err != nil {
			return nil, fmt.Errorf("failed to resolve external ip: %w", res.err)
		}
		return res.ip, nil
	}
}
