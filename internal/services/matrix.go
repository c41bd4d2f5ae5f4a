package services

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/ports"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const defaultMatrixConcurrency = 5

// n×n travel costs between resolved points; cell [i][j] is the leg i -> j.
type DistanceMatrix [][]domain.TravelCost

// Sum of leg distances in metres along order.
func (m DistanceMatrix) PathDistance(order []int) float64 {
	total := 0.0
	for i := 0; i < len(order)-1; i++ {
		total += m[order[i]][order[i+1]].DistanceMeters
	}
	return total
}

// Implemented by estimators that can price a whole origin row at once.
type rowEstimator interface {
	EstimateRow(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) []domain.TravelCost
}

type MatrixOptions struct {
	// Rows computed concurrently. Zero means 5.
	Concurrency int
}

// Precompute the cost of every ordered pair of points.
//
// Rows are filled concurrently. Estimator failures never surface here because
// the estimator falls back internally, so the only error is ctx cancellation.
func BuildDistanceMatrix(
	ctx context.Context,
	points []domain.Coordinates,
	estimator ports.TravelCostEstimator,
	opts MatrixOptions,
) (DistanceMatrix, error) {
	n := len(points)
	m := make(DistanceMatrix, n)
	for i := range m {
		m[i] = make([]domain.TravelCost, n)
	}
	if n < 2 {
		return m, nil
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = defaultMatrixConcurrency
	}

	re, hasRow := estimator.(rowEstimator)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range points {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			// Each goroutine owns row i exclusively.
			targets := make([]int, 0, n-1)
			coords := make([]domain.Coordinates, 0, n-1)
			for j := range points {
				if j != i {
					targets = append(targets, j)
					coords = append(coords, points[j])
				}
			}

			if hasRow {
				costs := re.EstimateRow(gctx, points[i], coords)
				for k, j := range targets {
					m[i][j] = costs[k]
				}
			} else {
				for k, j := range targets {
					m[i][j] = estimator.Estimate(gctx, &points[i], &coords[k])
				}
			}

			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build distance matrix: %w", err)
	}
	return m, nil
}

// Serves precomputed legs and defers to a live estimator for anything else.
type matrixEstimator struct {
	legs     map[[2]domain.Coordinates]domain.TravelCost
	fallback ports.TravelCostEstimator
}

func newMatrixEstimator(points []domain.Coordinates, m DistanceMatrix, fallback ports.TravelCostEstimator) *matrixEstimator {
	legs := make(map[[2]domain.Coordinates]domain.TravelCost, len(points)*len(points))
	for i := range points {
		for j := range points {
			if i != j {
				legs[[2]domain.Coordinates{points[i], points[j]}] = m[i][j]
			}
		}
	}
	return &matrixEstimator{legs: legs, fallback: fallback}
}

func (e *matrixEstimator) Estimate(ctx context.Context, origin, destination *domain.Coordinates) domain.TravelCost {
	if origin != nil && destination != nil {
		if c, ok := e.legs[[2]domain.Coordinates{*origin, *destination}]; ok {
			return c
		}
	}
	return e.fallback.Estimate(ctx, origin, destination)
}
