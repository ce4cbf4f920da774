package syncer

import (
	"context"
	"sync"

	"aitubersync/internal/storage"
	"aitubersync/internal/youtube"
)

type fakeResolver map[string]string

func (f fakeResolver) Resolve(ctx context.Context, identifier string) (string, error) {
	if id, ok := f[identifier]; ok {
		return id, nil
	}
	return "", youtube.ErrNotFound
}

type fakeSource struct {
	mu         sync.Mutex
	channels   map[string]*youtube.ChannelInfo
	uploads    map[string][]youtube.CandidateVideo
	channelErr map[string]error
	uploadErr  map[string]error
	fetched    []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		channels:   make(map[string]*youtube.ChannelInfo),
		uploads:    make(map[string][]youtube.CandidateVideo),
		channelErr: make(map[string]error),
		uploadErr:  make(map[string]error),
	}
}

func (f *fakeSource) FetchChannel(ctx context.Context, channelID string) (*youtube.ChannelInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, channelID)
	if err := f.channelErr[channelID]; err != nil {
		return nil, err
	}
	info, ok := f.channels[channelID]
	if !ok {
		return nil, youtube.ErrNotFound
	}
	cp := *info
	return &cp, nil
}

func (f *fakeSource) Uploads(ctx context.Context, info *youtube.ChannelInfo, limit int) ([]youtube.CandidateVideo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.uploadErr[info.ID]; err != nil {
		return nil, err
	}
	items := f.uploads[info.ID]
	if len(items) == 0 {
		return nil, youtube.ErrNotFound
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// memStore is an in-memory DirectoryStore.
type memStore struct {
	mu    sync.Mutex
	dir   *storage.Directory
	saves int
	err   error
}

func (m *memStore) Load(ctx context.Context) (*storage.Directory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.dir.Clone(), nil
}

func (m *memStore) Save(ctx context.Context, dir *storage.Directory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.dir = dir.Clone()
	return nil
}

func (m *memStore) Close() error { return nil }

type availability bool

func (a availability) Available() bool { return bool(a) }
