package vptree_test

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/TrevorS/vptree"
)

func Example() {
	points := [][]float64{{0, 0}, {1, 0}, {1, 1}, {5, 5}}

	cfg := vptree.DefaultConfig()
	cfg.Source = rand.NewPCG(1, 2)
	tree, err := vptree.Build(points, cfg)
	if err != nil {
		panic(err)
	}

	nearest, _ := tree.KNN([]float64{0, 0}, 2)
	for _, n := range nearest {
		fmt.Printf("%.1f %v\n", n.Distance, n.Point)
	}

	inRange, _ := tree.Radius([]float64{0, 0}, 1.5)
	idx := make([]int, 0, len(inRange))
	for _, n := range inRange {
		idx = append(idx, n.Index)
	}
	sort.Ints(idx)
	fmt.Println(idx)

	// Output:
	// 0.0 [0 0]
	// 1.0 [1 0]
	// [0 1 2]
}

func ExampleValidateMetric() {
	a, b, c := []float64{0, 0}, []float64{1, 0}, []float64{1, 1}
	fmt.Println(vptree.ValidateMetric(vptree.EuclideanMetric{}, a, b, c))
	// Output: <nil>
}
