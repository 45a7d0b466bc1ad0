package web

import (
	"context"
	"sync"

	"goldshop/domain"
	"goldshop/internal/categorytree"
)

type fakeService struct {
	mu sync.Mutex

	forest []domain.CategoryNode
	err    error

	// gate, when set, holds Tree until it is closed; started is signalled
	// as each call reaches it.
	gate    chan struct{}
	started chan struct{}

	treeCalls int
	updates   []map[string]any
	moves     []*string
	deletes   []bool
	reorders  []categorytree.MoveRequest
	created   []categorytree.CreateRequest
}

func (f *fakeService) Tree(ctx context.Context) ([]domain.CategoryNode, error) {
	f.mu.Lock()
	gate, started := f.gate, f.started
	f.mu.Unlock()
	if gate != nil {
		if started != nil {
			started <- struct{}{}
		}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.treeCalls++
	return f.forest, nil
}

func (f *fakeService) BulkUpdate(ctx context.Context, ids []string, updates map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updates)
	return f.err
}

func (f *fakeService) BulkMove(ctx context.Context, ids []string, parentID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, parentID)
	return f.err
}

func (f *fakeService) BulkDelete(ctx context.Context, ids []string, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, force)
	return f.err
}

func (f *fakeService) Reorder(ctx context.Context, req categorytree.MoveRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reorders = append(f.reorders, req)
	return f.err
}

func (f *fakeService) Create(ctx context.Context, req categorytree.CreateRequest) (domain.CategoryNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	return domain.CategoryNode{ID: "new", Name: req.Name, ParentID: req.ParentID, IsActive: true}, f.err
}

func (f *fakeService) Update(ctx context.Context, id string, req categorytree.EditRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeService) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.treeCalls
}

func ptr[T any](v T) *T { return &v }

// shop is Rings > Bands plus a second root, Coins, that is inactive.
func shop() []domain.CategoryNode {
	return []domain.CategoryNode{
		{
			ID: "1", Name: "Rings", IsActive: true,
			Children: []domain.CategoryNode{
				{ID: "2", ParentID: ptr("1"), Name: "Bands", IsActive: true, ProductCount: ptr(4)},
			},
		},
		{ID: "3", Name: "Coins", SortOrder: 1, IsActive: false},
	}
}
