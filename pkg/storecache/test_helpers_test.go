package storecache_test

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/illmade-knight/go-storecache/pkg/store"
	"github.com/illmade-knight/go-storecache/pkg/storecache"
	"github.com/rs/zerolog"
)

// mockStoreClient is a test double for the store.Client interface. Each
// method counts its calls and delegates to an optional XxxFunc.
type mockStoreClient struct {
	ListContainersFunc func(ctx context.Context) ([]string, error)
	ListKeysFunc       func(ctx context.Context, ref store.ContainerRef, pageHint string, limit int) (store.KeyListing, error)
	GetValueFunc       func(ctx context.Context, ref store.ContainerRef, key string) (store.ValueRecord, error)

	listContainersCalls atomic.Int32
	listKeysCalls       atomic.Int32
	getValueCalls       atomic.Int32
}

func (m *mockStoreClient) ListContainers(ctx context.Context) ([]string, error) {
	m.listContainersCalls.Add(1)
	if m.ListContainersFunc != nil {
		return m.ListContainersFunc(ctx)
	}
	return nil, fmt.Errorf("mock ListContainers not implemented")
}

func (m *mockStoreClient) ListKeys(ctx context.Context, ref store.ContainerRef, pageHint string, limit int) (store.KeyListing, error) {
	m.listKeysCalls.Add(1)
	if m.ListKeysFunc != nil {
		return m.ListKeysFunc(ctx, ref, pageHint, limit)
	}
	return store.KeyListing{}, fmt.Errorf("mock ListKeys not implemented")
}

func (m *mockStoreClient) GetValue(ctx context.Context, ref store.ContainerRef, key string) (store.ValueRecord, error) {
	m.getValueCalls.Add(1)
	if m.GetValueFunc != nil {
		return m.GetValueFunc(ctx, ref, key)
	}
	return store.ValueRecord{}, fmt.Errorf("mock GetValue not implemented")
}

func newTestService(cfg storecache.Config, client store.Client) *storecache.Service {
	return storecache.New(cfg, client, zerolog.Nop())
}

// realListing builds a listing of plain keys.
func realListing(names ...string) store.KeyListing {
	listing := store.KeyListing{}
	for _, name := range names {
		listing.Keys = append(listing.Keys, store.KeyDescriptor{Name: name, Size: 64})
	}
	return listing
}

// throttledListing is what the store returns in place of real keys while
// rate-limiting: the sentinel key, possibly with stragglers.
func throttledListing(extra ...string) store.KeyListing {
	return realListing(append([]string{store.ThrottledKeySentinel}, extra...)...)
}

// realValue is a genuine value response for a key.
func realValue(key string) store.ValueRecord {
	return store.ValueRecord{
		Key:   key,
		Value: map[string]any{"coins": 100},
		Type:  "table",
		Size:  64,
	}
}

// throttledValue is the structurally-valid placeholder the client marks
// as not real.
func throttledValue(key string) store.ValueRecord {
	return store.ValueRecord{Key: key, Value: "placeholder", Throttled: true}
}
