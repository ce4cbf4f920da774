package youtube

import (
	"context"
	"net/http"
	"sync"

	"google.golang.org/api/googleapi"
)

// fakeBackend is an in-memory Backend that records calls.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	handles  map[string]string
	names    map[string]string
	channels map[string]*ChannelInfo
	uploads  map[string][]UploadItem
	details  map[string]VideoDetails

	// err, when set, is returned by every method.
	err error
	// detailsErr, when set, is returned by GetVideoDetails only.
	detailsErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls:    make(map[string]int),
		handles:  make(map[string]string),
		names:    make(map[string]string),
		channels: make(map[string]*ChannelInfo),
		uploads:  make(map[string][]UploadItem),
		details:  make(map[string]VideoDetails),
	}
}

func (f *fakeBackend) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.err
}

func (f *fakeBackend) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeBackend) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeBackend) ResolveHandle(ctx context.Context, handle string) (string, error) {
	if err := f.record("ResolveHandle"); err != nil {
		return "", err
	}
	if id, ok := f.handles[handle]; ok {
		return id, nil
	}
	return "", ErrNotFound
}

func (f *fakeBackend) SearchByName(ctx context.Context, name string) (string, error) {
	if err := f.record("SearchByName"); err != nil {
		return "", err
	}
	if id, ok := f.names[name]; ok {
		return id, nil
	}
	return "", ErrNotFound
}

func (f *fakeBackend) GetChannel(ctx context.Context, channelID string) (*ChannelInfo, error) {
	if err := f.record("GetChannel"); err != nil {
		return nil, err
	}
	if info, ok := f.channels[channelID]; ok {
		cp := *info
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (f *fakeBackend) ListUploads(ctx context.Context, playlistID string, limit int) ([]UploadItem, error) {
	if err := f.record("ListUploads"); err != nil {
		return nil, err
	}
	items := f.uploads[playlistID]
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return append([]UploadItem(nil), items...), nil
}

func (f *fakeBackend) GetVideoDetails(ctx context.Context, videoIDs []string) (map[string]VideoDetails, error) {
	if err := f.record("GetVideoDetails"); err != nil {
		return nil, err
	}
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	out := make(map[string]VideoDetails)
	for _, id := range videoIDs {
		if d, ok := f.details[id]; ok {
			out[id] = d
		}
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// fakeInvoker runs calls directly against one backend.
type fakeInvoker struct{ backend Backend }

func (i fakeInvoker) Do(ctx context.Context, call func(ctx context.Context, b Backend) error) error {
	return call(ctx, i.backend)
}

// forbidden is the error the client library returns for a 403.
func forbidden() error {
	return &googleapi.Error{Code: http.StatusForbidden, Message: "The request cannot be completed because you have exceeded your quota."}
}
