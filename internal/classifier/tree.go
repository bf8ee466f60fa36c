package classifier

import "sort"

// node is either a split (left/right set) or a leaf.
type node struct {
	feature   int
	threshold float64 // rows with x[feature] < threshold go left
	left      *node
	right     *node
	leaf      float64
}

func (n *node) isLeaf() bool { return n.left == nil }

func (n *node) predict(x []float64) float64 {
	for !n.isLeaf() {
		if x[n.feature] < n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.leaf
}

type builder struct {
	data [][]float64
	grad []float64
	hess []float64
	p    Params
}

type split struct {
	feature   int
	threshold float64
	gain      float64
	left      []int
	right     []int
}

func (b *builder) sums(idx []int) (g, h float64) {
	for _, i := range idx {
		g += b.grad[i]
		h += b.hess[i]
	}
	return g, h
}

func (b *builder) build(idx []int, depth int) *node {
	g, h := b.sums(idx)
	leaf := &node{leaf: -g / (h + b.p.Lambda) * b.p.LearningRate}
	if depth >= b.p.MaxDepth || len(idx) < 2 {
		return leaf
	}
	best, ok := b.bestSplit(idx, g, h)
	if !ok {
		return leaf
	}
	return &node{
		feature:   best.feature,
		threshold: best.threshold,
		left:      b.build(best.left, depth+1),
		right:     b.build(best.right, depth+1),
	}
}

// bestSplit scans every feature for the threshold with the largest loss
// reduction. Candidate thresholds sit halfway between distinct sorted values.
func (b *builder) bestSplit(idx []int, g, h float64) (split, bool) {
	const minGain = 1e-6
	lambda := b.p.Lambda
	parent := g * g / (h + lambda)

	var best split
	found := false
	order := make([]int, len(idx))
	nFeatures := len(b.data[idx[0]])

	for f := 0; f < nFeatures; f++ {
		copy(order, idx)
		sort.SliceStable(order, func(i, j int) bool { return b.data[order[i]][f] < b.data[order[j]][f] })

		var gl, hl float64
		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			gl += b.grad[i]
			hl += b.hess[i]
			cur, next := b.data[i][f], b.data[order[k+1]][f]
			if cur == next {
				continue
			}
			gr, hr := g-gl, h-hl
			if hl < b.p.MinChildWeight || hr < b.p.MinChildWeight {
				continue
			}
			gain := 0.5*(gl*gl/(hl+lambda)+gr*gr/(hr+lambda)-parent) - b.p.Gamma
			if gain > minGain && (!found || gain > best.gain) {
				found = true
				best = split{feature: f, threshold: (cur + next) / 2, gain: gain}
			}
		}
	}
	if !found {
		return best, false
	}
	for _, i := range idx {
		if b.data[i][best.feature] < best.threshold {
			best.left = append(best.left, i)
		} else {
			best.right = append(best.right, i)
		}
	}
	return best, true
}
