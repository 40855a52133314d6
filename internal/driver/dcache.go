package driver

import (
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"tacc/internal/buildpipeline"
	"tacc/internal/cfg"
	"tacc/internal/cpu"
	"tacc/internal/project"
	"tacc/internal/regalloc"
	"tacc/internal/symtab"
	"tacc/internal/tac"
	"tacc/internal/trace"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит скомпилированные артефакты по ключу CacheKey на диске.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is everything the back end produced for one source file.
// Only compilations that reached the CPU stage without errors are stored.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16 `msgpack:"schema"`
	Path   string `msgpack:"path"`

	Symbols []symtab.Symbol      `msgpack:"symbols"`
	TAC     tac.Program          `msgpack:"tac"`
	CFG     *cfg.Graph           `msgpack:"cfg"`
	Alloc   *regalloc.Allocation `msgpack:"alloc"`
	CPU     []cpu.Instr          `msgpack:"cpu"`
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt uses dir as the cache root, creating it if needed.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// lockPath lives next to the root so DropAll can rename the root itself.
func (c *DiskCache) lockPath() string {
	return c.dir + ".lock"
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, чтобы не копить тысячи файлов в одном месте
	return filepath.Join(c.dir, "artifacts", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	unlock, err := lockFile(c.lockPath(), false)
	if err != nil {
		return err
	}
	defer unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	unlock, err := lockFile(c.lockPath(), true)
	if err != nil {
		return err
	}
	defer unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(c.dir, 0o755)
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// restore fills the result from the cache. The interpreter needs a syntax
// tree, so runs always go through the front end.
func (p *pipeline) restore(ctx context.Context) bool {
	c := p.opts.Cache
	if c == nil || p.opts.Run || stageIndex(p.opts.Until) < stageIndex(buildpipeline.StageTAC) {
		return false
	}
	_, span := trace.Start(ctx, trace.ScopePass, string(buildpipeline.StageCache))
	started := time.Now()

	var payload DiskPayload
	hit, err := c.Get(CacheKey(p.res.File.Hash, p.opts.Alloc), &payload)
	switch {
	case err != nil:
		span.End("unreadable: " + err.Error())
		return false
	case !hit || payload.CFG == nil || payload.Alloc == nil:
		span.End("miss")
		return false
	}

	p.res.Symbols = payload.Symbols
	p.res.TAC = payload.TAC
	p.res.CFG = payload.CFG
	p.res.Alloc = payload.Alloc
	p.res.CPU = payload.CPU
	p.res.Cached = true
	p.res.Reached = buildpipeline.StageCPU
	p.reportDanglingJumps()
	p.reportSpills()

	p.res.Timings.Set(buildpipeline.StageCache, time.Since(started))
	span.End("hit")
	return true
}

// store writes a successful compilation back. A failed write only costs
// the next run a recompile, so it is traced and otherwise ignored.
func (p *pipeline) store(ctx context.Context) {
	c := p.opts.Cache
	if c == nil || p.res.Reached != buildpipeline.StageCPU || p.res.Bag.HasErrors() {
		return
	}
	payload := &DiskPayload{
		Schema:  diskCacheSchemaVersion,
		Path:    p.res.File.Path,
		Symbols: p.res.Symbols,
		TAC:     p.res.TAC,
		CFG:     p.res.CFG,
		Alloc:   p.res.Alloc,
		CPU:     p.res.CPU,
	}
	if err := c.Put(CacheKey(p.res.File.Hash, p.opts.Alloc), payload); err != nil {
		_, span := trace.Start(ctx, trace.ScopePass, "cache-write")
		span.End(err.Error())
	}
}
