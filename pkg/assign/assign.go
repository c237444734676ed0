// Package assign ties detected objects to their parent nuclei by
// nearest-centroid assignment and buckets them into per-nucleus groups.
package assign

import (
	"math"

	"cellquant/pkg/regions"
)

// ToNearestNucleus sets AssignedNucleusID on every record to the id of
// the nucleus with the closest centroid. Ties go to the
// first-encountered nucleus in label order. With no objects or no
// nuclei the call is a no-op: there is nothing to assign and that is
// not an error. Running the assignment twice yields identical ids.
func ToNearestNucleus(objects []*regions.RegionRecord, nuclei []*regions.NucleusRecord) {
	if len(objects) == 0 || len(nuclei) == 0 {
		return
	}
	for _, obj := range objects {
		best := 0
		bestDist := math.Inf(1)
		for i, n := range nuclei {
			d := math.Hypot(obj.Centroid.X-n.Centroid.X, obj.Centroid.Y-n.Centroid.Y)
			if d < bestDist {
				bestDist = d
				best = i
			}
		}
		obj.AssignedNucleusID = nuclei[best].ID
	}
}

// GroupByNucleus bucket-sorts assigned objects into numNuclei ordered
// lists. Objects whose assigned id falls outside 1..numNuclei are
// dropped; they indicate the assignment never ran for them, and keeping
// them would leave dangling references.
func GroupByNucleus(objects []*regions.RegionRecord, numNuclei int) *regions.Grouping {
	g := &regions.Grouping{
		NumNuclei: numNuclei,
		ByNucleus: make([][]*regions.RegionRecord, numNuclei),
	}
	if numNuclei <= 0 {
		g.ByNucleus = nil
		return g
	}
	for _, obj := range objects {
		id := obj.AssignedNucleusID
		if id <= 0 || id > numNuclei {
			continue
		}
		g.ByNucleus[id-1] = append(g.ByNucleus[id-1], obj)
	}
	return g
}
