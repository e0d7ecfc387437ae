// internal/blockchain/substrate/client.go
package substrate

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultPageSize is the number of keys requested per state_getKeysPaged call
const DefaultPageSize = 1000

// RPCRecorder observes every RPC call the client makes
type RPCRecorder interface {
	RecordRPC(method string, duration time.Duration, err error)
}

// Client is a read-only JSON-RPC client for a Substrate node
type Client struct {
	rpc      *gethrpc.Client
	endpoint string
	pageSize int
	logger   *zap.Logger
	recorder RPCRecorder
}

// Dial connects to the node at endpoint (ws, wss, http or https).
func Dial(ctx context.Context, endpoint string, pageSize int, logger *zap.Logger) (*Client, error) {
	rpcClient, err := gethrpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, NewError(err, endpoint, "dial")
	}
	return NewClient(rpcClient, endpoint, pageSize, logger), nil
}

// NewClient wraps an already connected JSON-RPC client
func NewClient(rpcClient *gethrpc.Client, endpoint string, pageSize int, logger *zap.Logger) *Client {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Client{
		rpc:      rpcClient,
		endpoint: endpoint,
		pageSize: pageSize,
		logger:   logger.Named("substrate-rpc"),
	}
}

// SetRecorder installs r to observe subsequent calls
func (c *Client) SetRecorder(r RPCRecorder) {
	c.recorder = r
}

// Endpoint returns the node URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	c.logger.Debug("RPC call", zap.String("method", method), zap.Int("args", len(args)))

	start := time.Now()
	err := c.rpc.CallContext(ctx, result, method, args...)
	if c.recorder != nil {
		c.recorder.RecordRPC(method, time.Since(start), err)
	}
	if err != nil {
		return NewError(err, c.endpoint, method)
	}
	return nil
}

type header struct {
	Number string `json:"number"`
}

// HeadNumber returns the height of the current best block
func (c *Client) HeadNumber(ctx context.Context) (uint64, error) {
	var h *header
	if err := c.call(ctx, &h, "chain_getHeader"); err != nil {
		return 0, err
	}
	if h == nil {
		return 0, errors.Wrap(ErrInvalidResponse, "chain_getHeader returned null")
	}
	n, err := parseHexNumber(h.Number)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidResponse, "header number %q: %v", h.Number, err)
	}
	return n, nil
}

// BlockHash resolves a block height to its hash
func (c *Client) BlockHash(ctx context.Context, height uint64) (common.Hash, error) {
	var hash *common.Hash
	if err := c.call(ctx, &hash, "chain_getBlockHash", height); err != nil {
		return common.Hash{}, err
	}
	if hash == nil || *hash == (common.Hash{}) {
		return common.Hash{}, errors.Wrapf(ErrBlockNotFound, "height %d", height)
	}
	return *hash, nil
}

// At returns a state view pinned at the given block hash
func (c *Client) At(hash common.Hash) *Snapshot {
	return &Snapshot{client: c, hash: hash}
}

// Close terminates the connection
func (c *Client) Close() {
	c.rpc.Close()
}

func parseHexNumber(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return 0, errors.New("empty number")
	}
	return strconv.ParseUint(s, 16, 64)
}
