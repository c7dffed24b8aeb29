package captions

import (
	"sync"
	"time"

	"github.com/carekiosk/kiosk/filesystem"
	"github.com/carekiosk/kiosk/key"
	"github.com/carekiosk/kiosk/where"
	"github.com/metafates/gache"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// cacheData is the on-disk layout of the cue cache.
type cacheData struct {
	Tracks map[string][]Cue `json:"tracks"`
}

// cueCache persists parsed tracks keyed by caption url.
type cueCache struct {
	internal *gache.Cache[*cacheData]
	mu       sync.RWMutex
}

func (c *cueCache) Get(url string) mo.Option[[]Cue] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[[]Cue]()
	}

	cues, ok := data.Tracks[url]
	if !ok {
		return mo.None[[]Cue]()
	}
	return mo.Some(cues)
}

func (c *cueCache) Set(url string, cues []Cue) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}

	if expired || data == nil || data.Tracks == nil {
		data = &cacheData{Tracks: make(map[string][]Cue)}
	}
	data.Tracks[url] = cues
	return c.internal.Set(data)
}

var (
	sharedCache     *cueCache
	sharedCacheOnce sync.Once
)

// cache lazily opens the cue cache so the configured lifetime is honored.
func cache() *cueCache {
	sharedCacheOnce.Do(func() {
		hours := viper.GetInt(key.CaptionsCacheHours)
		if hours <= 0 {
			hours = 24
		}
		sharedCache = &cueCache{
			internal: gache.New[*cacheData](&gache.Options{
				Path:       where.Captions(),
				Lifetime:   time.Duration(hours) * time.Hour,
				FileSystem: &filesystem.GacheFs{},
			}),
		}
	})
	return sharedCache
}
