package expr

// SmoothMax builds a continuously differentiable approximation of max(a, b):
//
//	smooth_max(a, b, eps) = ((a-b)^2 + eps^2)^0.5/2 + (a+b)/2
//
// The approximation is one-sided: it is everywhere >= the true maximum, with
// error at most eps/2 (attained at a == b) vanishing away from the kink. This
// keeps quantities built on it, such as pressure distances from saturation,
// nonnegative for every eps > 0.
func SmoothMax(a, b Node, eps float64) Node {
	diff := Sub(a, b)
	root := Sqrt(Sum(Prod(diff, diff), C(eps*eps)))
	return Sum(Prod(C(0.5), root), Prod(C(0.5), Sum(a, b)))
}
