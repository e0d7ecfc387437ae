package substrate

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChainAPI struct {
	head   uint64
	hashes map[uint64]common.Hash
}

func (api *fakeChainAPI) GetHeader() (*header, error) {
	return &header{Number: hexutil.EncodeUint64(api.head)}, nil
}

func (api *fakeChainAPI) GetBlockHash(height uint64) (*common.Hash, error) {
	hash, ok := api.hashes[height]
	if !ok {
		return nil, nil
	}
	return &hash, nil
}

type fakeStateAPI struct {
	mu      sync.Mutex
	storage map[string][]byte
	seen    []common.Hash
}

func (api *fakeStateAPI) record(at common.Hash) {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.seen = append(api.seen, at)
}

func (api *fakeStateAPI) GetStorage(key hexutil.Bytes, at common.Hash) (*hexutil.Bytes, error) {
	api.record(at)
	v, ok := api.storage[string(key)]
	if !ok {
		return nil, nil
	}
	value := hexutil.Bytes(v)
	return &value, nil
}

func (api *fakeStateAPI) GetKeysPaged(prefix hexutil.Bytes, count int, start *hexutil.Bytes, at common.Hash) ([]hexutil.Bytes, error) {
	api.record(at)

	var keys []string
	for k := range api.storage {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	page := []hexutil.Bytes{}
	for _, k := range keys {
		if start != nil && k <= string(*start) {
			continue
		}
		if len(page) == count {
			break
		}
		page = append(page, hexutil.Bytes(k))
	}
	return page, nil
}

func (api *fakeStateAPI) QueryStorageAt(keys []hexutil.Bytes, at common.Hash) ([]changeSet, error) {
	api.record(at)

	set := changeSet{Block: at}
	for _, k := range keys {
		key := k
		var value *hexutil.Bytes
		if v, ok := api.storage[string(k)]; ok {
			b := hexutil.Bytes(v)
			value = &b
		}
		set.Changes = append(set.Changes, [2]*hexutil.Bytes{&key, value})
	}
	return []changeSet{set}, nil
}

func newTestClient(t *testing.T, chain *fakeChainAPI, state *fakeStateAPI, pageSize int) *Client {
	t.Helper()

	server := gethrpc.NewServer()
	require.NoError(t, server.RegisterName("chain", chain))
	require.NoError(t, server.RegisterName("state", state))
	t.Cleanup(server.Stop)

	client := NewClient(gethrpc.DialInProc(server), "inproc", pageSize, zap.NewNop())
	t.Cleanup(client.Close)
	return client
}

func TestClientHeadAndBlockHash(t *testing.T) {
	hash := common.HexToHash("0x01")
	client := newTestClient(t, &fakeChainAPI{
		head:   4_800_000,
		hashes: map[uint64]common.Hash{4_700_000: hash},
	}, &fakeStateAPI{}, 10)

	ctx := context.Background()

	head, err := client.HeadNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4_800_000), head)

	got, err := client.BlockHash(ctx, 4_700_000)
	require.NoError(t, err)
	assert.Equal(t, hash, got)

	_, err = client.BlockHash(ctx, 1)
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestSnapshotEntriesArePagedAndPinned(t *testing.T) {
	prefix := StoragePrefix("Tokens", "Accounts")
	other := StoragePrefix("Omnipool", "Positions")

	storage := map[string][]byte{
		string(StorageKey(other, []byte{9})): {0xff},
	}
	for i := byte(0); i < 7; i++ {
		storage[string(StorageKey(prefix, []byte{i}))] = []byte{i, i}
	}

	hash := common.HexToHash("0xabcdef")
	state := &fakeStateAPI{storage: storage}
	client := newTestClient(t, &fakeChainAPI{}, state, 3)
	snapshot := client.At(hash)
	assert.Equal(t, hash, snapshot.Hash())

	entries, err := snapshot.Entries(context.Background(), prefix)
	require.NoError(t, err)
	require.Len(t, entries, 7)
	for i, e := range entries {
		assert.Equal(t, StorageKey(prefix, []byte{byte(i)}), e.Key)
		assert.Equal(t, []byte{byte(i), byte(i)}, e.Value)
	}

	value, err := snapshot.Get(context.Background(), StorageKey(other, []byte{9}))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff}, value)

	missing, err := snapshot.Get(context.Background(), StorageKey(other, []byte{1}))
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NotEmpty(t, state.seen)
	for _, at := range state.seen {
		assert.Equal(t, hash, at)
	}
}

type callLog struct {
	mu      sync.Mutex
	methods []string
}

func (l *callLog) RecordRPC(method string, _ time.Duration, _ error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.methods = append(l.methods, method)
}

func TestClientRecordsCalls(t *testing.T) {
	client := newTestClient(t, &fakeChainAPI{head: 1}, &fakeStateAPI{storage: map[string][]byte{}}, 5)
	log := &callLog{}
	client.SetRecorder(log)

	_, err := client.HeadNumber(context.Background())
	require.NoError(t, err)
	_, err = client.At(common.HexToHash("0x03")).Entries(context.Background(), StoragePrefix("DCA", "Schedules"))
	require.NoError(t, err)

	assert.Equal(t, []string{"chain_getHeader", "state_getKeysPaged"}, log.methods)
}

func TestSnapshotEntriesEmptyPrefix(t *testing.T) {
	client := newTestClient(t, &fakeChainAPI{}, &fakeStateAPI{storage: map[string][]byte{}}, 5)

	entries, err := client.At(common.HexToHash("0x02")).Entries(context.Background(), StoragePrefix("DCA", "Schedules"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
