package tree

import (
	"github.com/okian/admitcalc/internal/domain/ids"
	"github.com/okian/admitcalc/internal/domain/model"
)

// Export returns copies of the user-created institutions.
func (t Tree) Export() []model.Institution {
	out := make([]model.Institution, 0, len(t.institutions))
	for _, inst := range t.institutions {
		if inst.Builtin {
			continue
		}
		out = append(out, inst.Clone())
	}
	return out
}

// Import appends institutions. Any id, at any level, that collides with a
// node already in the tree or with an earlier incoming node is replaced by a
// fresh one. It returns the final ids of the appended institutions.
func (t Tree) Import(incoming []model.Institution) (Tree, []string) {
	claim := t.claimer(t.ids())
	out := t.clone()
	added := make([]string, 0, len(incoming))
	for _, src := range incoming {
		inst := src.Clone()
		inst.Builtin = false
		claim.institution(&inst)
		out.institutions = append(out.institutions, inst)
		added = append(added, inst.ID)
	}
	return out, added
}

// claimer hands out ids that are unique against taken.
type claimer struct {
	t     Tree
	taken map[string]struct{}
}

func (t Tree) claimer(taken map[string]struct{}) claimer {
	return claimer{t: t, taken: taken}
}

func (c claimer) claim(id, prefix string) string {
	if _, dup := c.taken[id]; dup || id == "" {
		id = c.t.gen.New(prefix)
	} else {
		c.t.gen.SeenAndRecord(id)
	}
	c.taken[id] = struct{}{}
	return id
}

// institution re-keys inst and everything below it in place and fills
// missing weight tables.
func (c claimer) institution(inst *model.Institution) {
	inst.ID = c.claim(inst.ID, ids.PrefixInstitution)
	for j := range inst.Programs {
		p := &inst.Programs[j]
		p.ID = c.claim(p.ID, ids.PrefixProgram)
		for k := range p.Tracks {
			tr := &p.Tracks[k]
			tr.ID = c.claim(tr.ID, ids.PrefixTrack)
			if tr.Weights == nil {
				tr.Weights = c.t.catalog.ZeroWeights()
			}
		}
	}
}

func (t Tree) ids() map[string]struct{} {
	set := make(map[string]struct{})
	for _, inst := range t.institutions {
		set[inst.ID] = struct{}{}
		for _, p := range inst.Programs {
			set[p.ID] = struct{}{}
			for _, tr := range p.Tracks {
				set[tr.ID] = struct{}{}
			}
		}
	}
	return set
}
