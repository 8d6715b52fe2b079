package db

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providers(t *testing.T) map[string]IterableProvider {
	t.Helper()
	leveldbProvider, err := NewLevelDBProvider(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { leveldbProvider.Close() })

	return map[string]IterableProvider{
		"leveldb": leveldbProvider.(IterableProvider),
		"memory":  NewMemoryProvider(),
	}
}

func TestProviderBasicOps(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			value, err := p.Get([]byte("missing"))
			require.NoError(t, err)
			assert.Nil(t, value, "missing key should return nil, not error")

			require.NoError(t, p.Put([]byte("k1"), []byte("v1")))

			has, err := p.Has([]byte("k1"))
			require.NoError(t, err)
			assert.True(t, has)

			value, err = p.Get([]byte("k1"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), value)

			require.NoError(t, p.Delete([]byte("k1")))
			has, err = p.Has([]byte("k1"))
			require.NoError(t, err)
			assert.False(t, has)
		})
	}
}

func TestProviderBatchIsAtomicallyVisible(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			batch := p.Batch()
			batch.Put([]byte("a"), []byte("1"))
			batch.Put([]byte("b"), []byte("2"))
			batch.Delete([]byte("a"))

			// Nothing lands before Write.
			has, err := p.Has([]byte("b"))
			require.NoError(t, err)
			assert.False(t, has)

			require.NoError(t, batch.Write())
			batch.Close()

			has, err = p.Has([]byte("a"))
			require.NoError(t, err)
			assert.False(t, has, "delete inside batch should win over earlier put")

			value, err := p.Get([]byte("b"))
			require.NoError(t, err)
			assert.Equal(t, []byte("2"), value)
		})
	}
}

func TestProviderIteratePrefixOrder(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 12; i++ {
				key := fmt.Sprintf("claim:%016d", i)
				require.NoError(t, p.Put([]byte(key), []byte(fmt.Sprintf("%d", i))))
			}
			// Keys outside the prefix must not appear.
			require.NoError(t, p.Put([]byte("claim_seq"), []byte("x")))
			require.NoError(t, p.Put([]byte("faucet:state"), []byte("y")))

			var got []string
			err := p.IteratePrefix([]byte("claim:"), func(key, value []byte) bool {
				got = append(got, string(value))
				return true
			})
			require.NoError(t, err)
			require.Len(t, got, 12)
			for i, v := range got {
				assert.Equal(t, fmt.Sprintf("%d", i), v)
			}

			// Early stop.
			count := 0
			err = p.IteratePrefix([]byte("claim:"), func(key, value []byte) bool {
				count++
				return count < 3
			})
			require.NoError(t, err)
			assert.Equal(t, 3, count)
		})
	}
}
