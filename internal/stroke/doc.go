// Package stroke converts stroked polylines into fillable polygons.
//
// A stroke is decomposed into convex pieces that are filled together with
// the non-zero winding rule:
//   - one rectangle per segment, width wide
//   - one join polygon per interior vertex (miter, round or bevel)
//   - one cap polygon per open end (butt, round, square or triangle)
//
// Every piece is emitted with positive orientation, so overlapping pieces
// never cancel and the union is exact regardless of self-intersection.
//
// # Dashing
//
// A dash pattern splits each polyline into open pieces before expansion.
// Each dash receives its own caps. A pattern whose entries sum to zero or
// contain a negative length is ignored.
//
// # Line Caps
//
//   - LineCapButt: flat cap ending exactly at the endpoint
//   - LineCapRound: semicircle with radius width/2
//   - LineCapSquare: square extending width/2 beyond the endpoint
//   - LineCapTriangle: triangle with apex width/2 beyond the endpoint
//
// # Line Joins
//
//   - LineJoinMiter: sharp corner, replaced by a bevel past the miter limit
//   - LineJoinRound: circular arc at corners
//   - LineJoinBevel: straight line across the corner
package stroke
