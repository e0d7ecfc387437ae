package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRPC(t *testing.T) {
	c := NewCollector()

	c.RecordRPC("state_getKeysPaged", 20*time.Millisecond, nil)
	c.RecordRPC("state_getKeysPaged", 10*time.Millisecond, nil)
	c.RecordRPC("chain_getBlockHash", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.rpcCalls.WithLabelValues("state_getKeysPaged", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rpcCalls.WithLabelValues("chain_getBlockHash", "failure")))
	assert.Equal(t, 3, c.RPCCalls())
}

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := NewCollector(), NewCollector()
	a.RecordRPC("state_getStorage", time.Millisecond, nil)

	assert.Equal(t, 1, a.RPCCalls())
	assert.Equal(t, 0, b.RPCCalls())
}

func TestWriteTextfile(t *testing.T) {
	c := NewCollector()
	c.SetBlock(4_700_000, "0x01")
	c.SetReportRows("dot-holders", 12)
	c.RecordRPC("state_queryStorageAt", time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "snapshot.prom")
	require.NoError(t, c.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `hydra_snapshot_report_rows{report="dot-holders"} 12`)
	assert.Contains(t, string(content), `hydra_snapshot_block_height{hash="0x01"}`)
	assert.Contains(t, string(content), `hydra_snapshot_rpc_calls_total{method="state_queryStorageAt",status="success"} 1`)
}
