package store

// EntityKey uniquely identifies a timeline entity.
type EntityKey struct {
	ID   string
	Type string
}

// Compare totally orders keys by type, then id. The order is what cursor
// pagination resumes against, so it must stay stable.
func (k EntityKey) Compare(other EntityKey) int {
	if k.Type != other.Type {
		if k.Type < other.Type {
			return -1
		}
		return 1
	}
	if k.ID != other.ID {
		if k.ID < other.ID {
			return -1
		}
		return 1
	}
	return 0
}
