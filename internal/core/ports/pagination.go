package ports

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest is limit/offset pagination. Limit <= 0 means DefaultPageLimit.
type PageRequest struct {
	Limit  int
	Offset int
}

// Normalize clamps the request into the supported range.
func (p PageRequest) Normalize() PageRequest {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Page is one slice of a collection plus the collection size.
type Page[T any] struct {
	Count   int64
	Results []T
}
