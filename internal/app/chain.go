package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hydra-snapshot/internal/blockchain/substrate"
	"github.com/rovshanmuradov/hydra-snapshot/internal/config"
	"github.com/rovshanmuradov/hydra-snapshot/internal/hydradx"
)

// Chain is the node connection a run reads from
type Chain interface {
	HeadNumber(ctx context.Context) (uint64, error)
	BlockHash(ctx context.Context, height uint64) (common.Hash, error)
	At(hash common.Hash) hydradx.StateReader
	Close()
}

// Dialer opens a Chain for cfg. Every RPC call made through the chain is reported to recorder.
type Dialer func(ctx context.Context, cfg *config.Config, logger *zap.Logger, recorder substrate.RPCRecorder) (Chain, error)

type substrateChain struct {
	*substrate.Client
}

func (c substrateChain) At(hash common.Hash) hydradx.StateReader {
	return c.Client.At(hash)
}

// DialSubstrate connects to cfg.Endpoint over JSON-RPC
func DialSubstrate(ctx context.Context, cfg *config.Config, logger *zap.Logger, recorder substrate.RPCRecorder) (Chain, error) {
	client, err := substrate.Dial(ctx, cfg.Endpoint, cfg.PageSize, logger)
	if err != nil {
		return nil, err
	}
	client.SetRecorder(recorder)
	return substrateChain{Client: client}, nil
}
