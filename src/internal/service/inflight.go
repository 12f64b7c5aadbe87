package service

import "sync"

type Flag string

const (
	FlagCreating       Flag = "creating"
	FlagUpdating       Flag = "updating"
	FlagUploadingMusic Flag = "uploading_music"
	FlagUploadingPhoto Flag = "uploading_photo"
)

type LoadingState struct {
	IsCreating     bool `json:"is_creating"`
	IsUpdating     bool `json:"is_updating"`
	UploadingMusic bool `json:"uploading_music"`
	UploadingPhoto bool `json:"uploading_photo"`
}

// inflight rejects a second operation with the same key and flag while the
// first is running. Requests are rejected, never queued.
type inflight struct {
	mu     sync.Mutex
	active map[string]map[Flag]bool
}

func newInflight() *inflight {
	return &inflight{active: make(map[string]map[Flag]bool)}
}

func (g *inflight) acquire(key string, f Flag) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	flags := g.active[key]
	if flags[f] {
		return nil, false
	}
	if flags == nil {
		flags = make(map[Flag]bool)
		g.active[key] = flags
	}
	flags[f] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			delete(g.active[key], f)
			if len(g.active[key]) == 0 {
				delete(g.active, key)
			}
		})
	}, true
}

func (g *inflight) state(key string) LoadingState {
	g.mu.Lock()
	defer g.mu.Unlock()

	flags := g.active[key]
	return LoadingState{
		IsCreating:     flags[FlagCreating],
		IsUpdating:     flags[FlagUpdating],
		UploadingMusic: flags[FlagUploadingMusic],
		UploadingPhoto: flags[FlagUploadingPhoto],
	}
}
