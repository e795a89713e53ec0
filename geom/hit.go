package geom

// RegionRef ties a hit-testable region back to the annotation and
// requirement it belongs to.
type RegionRef struct {
	AnnotationID  int64
	RequirementID int64
	Region        Region
}

// Hit identifies the annotation (and its requirement) a point resolved to.
type Hit struct {
	RequirementID int64 `json:"requirement_id"`
	AnnotationID  int64 `json:"annotation_id"`
}

// ResolveHit scans refs in the given order and returns the first region
// containing p. When annotations overlap, caller-supplied order decides;
// there is no priority scheme beyond it.
func ResolveHit(refs []RegionRef, p Point) (Hit, bool) {
	for _, ref := range refs {
		if Contains(ref.Region, p) {
			return Hit{RequirementID: ref.RequirementID, AnnotationID: ref.AnnotationID}, true
		}
	}
	return Hit{}, false
}
