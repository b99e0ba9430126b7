package megasena

import "math"

// kmeansResult is a partition of the input rows into clusters.
type kmeansResult struct {
	labels  []int
	inertia float64
}

// KMeans partitions rows into k groups by squared euclidean distance. It
// runs restarts k-means++ initialisations from a generator seeded with seed
// and keeps the lowest-inertia partition, so the output is deterministic for
// a given seed. Labels are in [0, k); a cluster may end up empty when rows
// repeat.
func KMeans(rows [][]float64, k int, seed int64, restarts int) []int {
	if len(rows) == 0 || k <= 0 {
		return nil
	}
	if k > len(rows) {
		k = len(rows)
	}
	if restarts <= 0 {
		restarts = 1
	}

	rng := NewRandomGenerator(seed)
	var best *kmeansResult
	for range restarts {
		res := lloyd(rows, initCentroids(rows, k, rng), ClusterMaxIterations)
		if best == nil || res.inertia < best.inertia {
			best = res
		}
	}
	return best.labels
}

// initCentroids picks k starting centroids with the k-means++ rule
func initCentroids(rows [][]float64, k int, rng *RandomGenerator) [][]float64 {
	centroids := make([][]float64, 0, k)
	first, _ := rng.GenerateInRange(0, len(rows)-1)
	centroids = append(centroids, cloneRow(rows[first]))

	dist := make([]float64, len(rows))
	for len(centroids) < k {
		var total float64
		for i, row := range rows {
			dist[i] = math.Inf(1)
			for _, c := range centroids {
				dist[i] = math.Min(dist[i], squaredDistance(row, c))
			}
			total += dist[i]
		}

		if total == 0 {
			// every row already sits on a centroid
			idx, _ := rng.GenerateInRange(0, len(rows)-1)
			centroids = append(centroids, cloneRow(rows[idx]))
			continue
		}

		cumulative, sum := cumulativeWeights(dist)
		idx := findWeightIndex(cumulative, rng.GenerateFloat()*sum)
		centroids = append(centroids, cloneRow(rows[idx]))
	}
	return centroids
}

// lloyd alternates assignment and centroid update until labels settle
func lloyd(rows [][]float64, centroids [][]float64, maxIter int) *kmeansResult {
	k := len(centroids)
	labels := make([]int, len(rows))
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, row := range rows {
			nearest := nearestCentroid(row, centroids)
			if nearest != labels[i] {
				labels[i] = nearest
				changed = true
			}
		}
		if !changed {
			break
		}

		dim := len(rows[0])
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, row := range rows {
			counts[labels[i]]++
			for j, v := range row {
				sums[labels[i]][j] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for j := range sums[c] {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	var inertia float64
	for i, row := range rows {
		inertia += squaredDistance(row, centroids[labels[i]])
	}
	return &kmeansResult{labels: labels, inertia: inertia}
}

func nearestCentroid(row []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := squaredDistance(row, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func cloneRow(row []float64) []float64 {
	out := make([]float64, len(row))
	copy(out, row)
	return out
}
