package physics

const (
	// CollisionAxisTolerance treats gaps and overlaps below this size as touching.
	CollisionAxisTolerance = 1e-9

	// TieTolerance groups hits at nearly the same distance so the most head-on
	// surface wins deterministically.
	TieTolerance = 1e-7

	// OverlapTolerance is the depth an overlap must exceed to count as solid.
	OverlapTolerance = 1e-6
)
