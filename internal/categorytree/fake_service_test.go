package categorytree

import (
	"context"
	"sync"

	"goldshop/domain"
)

type fakeService struct {
	mu sync.Mutex

	forest  []domain.CategoryNode
	treeErr error
	err     error

	// treeGate, when set, blocks Tree until it is closed. treeStarted is
	// signalled when a Tree call reaches the gate.
	treeGate    chan struct{}
	treeStarted chan struct{}

	treeCalls    int
	updates      []map[string]any
	updateIDs    [][]string
	moves        []*string
	moveIDs      [][]string
	deletes      []bool
	deleteIDs    [][]string
	reorders     []MoveRequest
	created      []CreateRequest
	edited       []EditRequest
	requestsSent int
}

func (f *fakeService) Tree(ctx context.Context) ([]domain.CategoryNode, error) {
	f.mu.Lock()
	gate, started := f.treeGate, f.treeStarted
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
	if f.treeErr != nil {
		return nil, f.treeErr
	}
	return f.forest, nil
}

func (f *fakeService) BulkUpdate(ctx context.Context, ids []string, updates map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestsSent++
	f.updates = append(f.updates, updates)
	f.updateIDs = append(f.updateIDs, ids)
	return f.err
}

func (f *fakeService) BulkMove(ctx context.Context, ids []string, parentID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestsSent++
	f.moves = append(f.moves, parentID)
	f.moveIDs = append(f.moveIDs, ids)
	return f.err
}

func (f *fakeService) BulkDelete(ctx context.Context, ids []string, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestsSent++
	f.deletes = append(f.deletes, force)
	f.deleteIDs = append(f.deleteIDs, ids)
	return f.err
}

func (f *fakeService) Reorder(ctx context.Context, req MoveRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestsSent++
	f.reorders = append(f.reorders, req)
	return f.err
}

func (f *fakeService) Create(ctx context.Context, req CreateRequest) (domain.CategoryNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestsSent++
	f.created = append(f.created, req)
	return domain.CategoryNode{ID: "new", Name: req.Name, ParentID: req.ParentID}, f.err
}

func (f *fakeService) Update(ctx context.Context, id string, req EditRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestsSent++
	f.edited = append(f.edited, req)
	return f.err
}

func (f *fakeService) sent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requestsSent
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// shopForest:
//
//	1 Jewelry
//	  2 Rings (sort 0)
//	    4 Wedding bands
//	  3 Necklaces (sort 1, 10 products)
//	5 Bullion (inactive)
func shopForest() []domain.CategoryNode {
	return []domain.CategoryNode{
		{
			ID:       "1",
			Name:     "Jewelry",
			IsActive: true,
			Children: []domain.CategoryNode{
				{ID: "2", ParentID: strPtr("1"), Name: "Rings", SortOrder: 0, IsActive: true, Children: []domain.CategoryNode{
					{ID: "4", ParentID: strPtr("2"), Name: "Wedding bands", IsActive: true, Children: []domain.CategoryNode{}},
				}},
				{ID: "3", ParentID: strPtr("1"), Name: "Necklaces", SortOrder: 1, IsActive: true, ProductCount: intPtr(10), Children: []domain.CategoryNode{}},
			},
		},
		{ID: "5", Name: "Bullion", SortOrder: 1, IsActive: false, Children: []domain.CategoryNode{}},
	}
}
