package lcloud

import "github.com/ordlucas/lcloud/internal/cache"

// BlockAddress uniquely identifies one fixed-size block on the cluster.
// It reuses the cache package's own address type since both mean
// exactly the same (device, sector, block) triple and must never drift
// apart.
type BlockAddress = cache.Address

// File tracks one open-or-closed logical file. handle never changes
// after creation; the block map persists across Close/Open of the same
// path until Shutdown.
type File struct {
	Path   string
	Handle int
	Pos    int
	Size   int
	Blocks []BlockAddress
	Open   bool
}
