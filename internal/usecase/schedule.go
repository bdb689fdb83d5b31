package usecase

import (
	"sort"
	"sync"

	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
)

// GroupContracts clusters resolved contracts by build fingerprint so each
// distinct (repository, ref, compiler settings) combination is compiled at
// most once per run. Group order is deterministic regardless of input order;
// members keep their candidate-set order within a group.
func GroupContracts(resolved []*models.ResolvedContract) []*models.BuildGroup {
	byKey := make(map[models.GroupKey]*models.BuildGroup)
	for _, rc := range resolved {
		key := models.GroupKey{
			Repository: rc.Entry.Repository,
			Ref:        rc.Entry.Commit,
			Settings:   rc.Deployment.Settings,
		}
		group, ok := byKey[key]
		if !ok {
			group = &models.BuildGroup{Key: key, Artifacts: make(map[string]string)}
			byKey[key] = group
		}
		group.Members = append(group.Members, rc)
	}

	groups := make([]*models.BuildGroup, 0, len(byKey))
	for _, group := range byKey {
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i].Key, groups[j].Key
		if a.Repository != b.Repository {
			return a.Repository < b.Repository
		}
		if a.Ref != b.Ref {
			return a.Ref < b.Ref
		}
		return a.Fingerprint() < b.Fingerprint()
	})
	return groups
}

// workspaceLocks hands out one mutex per workspace key. Groups that differ
// only in compiler settings share a checkout and must not build in it
// concurrently; groups with distinct checkouts proceed in parallel.
type workspaceLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newWorkspaceLocks() *workspaceLocks {
	return &workspaceLocks{locks: make(map[string]*sync.Mutex)}
}

func (w *workspaceLocks) get(key string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	lock, ok := w.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		w.locks[key] = lock
	}
	return lock
}
