package console

import (
	"context"
	"sync"

	"gams-bknd/internal/models"
)

// Partition selects which lifecycle slice of the registry a view
// controller owns.
type Partition int

const (
	PartitionActive Partition = iota
	PartitionDeleted
)

// State is the controller's fetch state machine: Idle until the first
// refresh, Loading while a fetch is outstanding, then Ready or Error.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

// ViewController owns one asset view: the last-fetched collection,
// the search text and current page, and the fetch state. The active
// and deleted controllers are linked as peers; every successful
// mutation in one refreshes both so the partitions never disagree.
//
// Mutation failures are returned to the caller and change nothing: no
// refresh happens and the previously fetched collection stays
// rendered.
type ViewController struct {
	api       AssetAPI
	partition Partition
	peer      *ViewController

	mu        sync.Mutex
	seq       uint64
	state     State
	lastError string
	assets    []models.ProcessedAsset
	search    string
	page      int
}

func NewViewController(api AssetAPI, partition Partition) *ViewController {
	return &ViewController{api: api, partition: partition, page: 1}
}

// Link wires the two controllers together as peers.
func Link(active, deleted *ViewController) {
	active.peer = deleted
	deleted.peer = active
}

// Refresh fetches the controller's partition. Each fetch carries a
// sequence number; a response that arrives after a newer fetch was
// issued is discarded so a slow round trip can never overwrite fresher
// data.
func (c *ViewController) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateLoading
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	assets, err := c.api.List(ctx, c.partition == PartitionDeleted)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		// stale response; a newer refresh owns the state now
		return nil
	}
	if err != nil {
		c.state = StateError
		c.lastError = err.Error()
		return err
	}

	if c.partition == PartitionDeleted {
		deleted := make([]models.ProcessedAsset, 0, len(assets))
		for _, a := range assets {
			if a.Deleted {
				deleted = append(deleted, a)
			}
		}
		assets = deleted
	}

	c.assets = assets
	c.state = StateReady
	c.lastError = ""
	return nil
}

// Page runs the reconciliation pipeline over the current collection
// and returns the rendered page.
func (c *ViewController) Page() PageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Reconcile(c.assets, c.search, c.page)
}

// SetSearch updates the filter text. The page number is kept; the
// pipeline simply renders fewer rows if the filter shrinks the set.
func (c *ViewController) SetSearch(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = query
}

// NextPage advances one page, bounded by the pipeline's total.
func (c *ViewController) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page < Reconcile(c.assets, c.search, c.page).TotalPages {
		c.page++
	}
}

// PrevPage steps back one page, bounded at 1.
func (c *ViewController) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page > 1 {
		c.page--
	}
}

func (c *ViewController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *ViewController) Loading() bool {
	return c.State() == StateLoading
}

func (c *ViewController) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

func (c *ViewController) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Create validates the submission against the asset schema and, only
// if it passes, posts it and refreshes both views. A validation
// failure issues no request at all.
func (c *ViewController) Create(ctx context.Context, in models.AssetInput) error {
	if errs := models.ValidateFields(in.Fields()); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	if _, err := c.api.Create(ctx, in); err != nil {
		return err
	}
	return c.refreshBoth(ctx)
}

// Update submits the edited record. Like Create, required fields are
// checked before any network call.
func (c *ViewController) Update(ctx context.Context, id string, fields map[string]any) error {
	if errs := models.ValidateFields(fields); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	if _, err := c.api.Update(ctx, id, fields); err != nil {
		return err
	}
	return c.refreshBoth(ctx)
}

// SoftDelete moves an asset to the deleted partition. Both views
// refresh in the same user-visible action.
func (c *ViewController) SoftDelete(ctx context.Context, id string) error {
	if _, err := c.api.Delete(ctx, id, false); err != nil {
		return err
	}
	return c.refreshBoth(ctx)
}

// Restore flips the deleted flag back through the generic update path;
// the store has no dedicated restore operation.
func (c *ViewController) Restore(ctx context.Context, id string) error {
	if _, err := c.api.Update(ctx, id, map[string]any{"deleted": false}); err != nil {
		return err
	}
	return c.refreshBoth(ctx)
}

// PermanentDelete erases the record for good. Callers confirm with the
// user before invoking this; the registry offers no undo.
func (c *ViewController) PermanentDelete(ctx context.Context, id string) error {
	if _, err := c.api.Delete(ctx, id, true); err != nil {
		return err
	}
	return c.refreshBoth(ctx)
}

func (c *ViewController) refreshBoth(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		return err
	}
	if c.peer != nil {
		return c.peer.Refresh(ctx)
	}
	return nil
}
