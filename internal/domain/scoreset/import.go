package scoreset

import (
	"math/rand/v2"
	"strconv"

	"github.com/okian/admitcalc/internal/domain/ids"
	"github.com/okian/admitcalc/internal/domain/model"
)

// ImportSets appends sets. An id colliding with an existing set, or with an
// earlier incoming one, is replaced by "set_<unixms>_<random>". It returns the
// final ids of the appended sets.
func (s Store) ImportSets(incoming []model.ScoreSet) (Store, []string) {
	taken := make(map[string]struct{}, len(s.sets)+len(incoming))
	for _, set := range s.sets {
		taken[set.ID] = struct{}{}
	}

	out := s.clone()
	added := make([]string, 0, len(incoming))
	for _, src := range incoming {
		set := src.Clone()
		if _, dup := taken[set.ID]; dup || set.ID == "" {
			set.ID = s.collisionID(taken)
		} else {
			s.gen.SeenAndRecord(set.ID)
		}
		taken[set.ID] = struct{}{}
		out.sets = append(out.sets, set)
		added = append(added, set.ID)
	}
	return out, added
}

// Export returns copies of every set.
func (s Store) Export() []model.ScoreSet { return s.Sets() }

func (s Store) collisionID(taken map[string]struct{}) string {
	ms := strconv.FormatInt(s.clock().UnixMilli(), 10)
	for {
		id := ids.PrefixScoreSet + "_" + ms + "_" + strconv.FormatUint(rand.Uint64N(1<<31), 36)
		if _, dup := taken[id]; dup {
			continue
		}
		if s.gen.SeenAndRecord(id) {
			continue
		}
		return id
	}
}
