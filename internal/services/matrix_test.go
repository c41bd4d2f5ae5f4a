package services

import (
	"context"
	"delivery-route-optimizer/internal/adapters/traffic"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/ports"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDistanceMatrixClosedForm(t *testing.T) {
	points := []domain.Coordinates{*north(0), *north(5), *north(10)}
	e := NewEstimator(EstimatorConfig{Logger: zerolog.Nop()})

	m, err := BuildDistanceMatrix(context.Background(), points, e, MatrixOptions{Concurrency: 2})
	require.NoError(t, err)

	require.Len(t, m, 3)
	for i := range m {
		assert.Zero(t, m[i][i].DistanceMeters)
		for j := range m {
			assert.InDelta(t, m[i][j].DistanceMeters, m[j][i].DistanceMeters, 1e-6)
		}
	}
	assert.InDelta(t, 5000, m[0][1].DistanceMeters, 1e-6)
	assert.InDelta(t, 10000, m.PathDistance([]int{0, 1, 2}), 1e-6)
}

func TestBuildDistanceMatrixOneBatchPerRow(t *testing.T) {
	points := []domain.Coordinates{*north(0), *north(1), *north(2), *north(3)}

	var legs []traffic.MockLeg
	for i := range points {
		for j := range points {
			if i != j {
				legs = append(legs, traffic.MockLeg{From: points[i], To: points[j], Meters: float64(1000 * (i + j)), Seconds: 60, TrafficSeconds: 60})
			}
		}
	}
	p := traffic.NewMockTrafficProvider(legs)
	e := NewEstimator(EstimatorConfig{Providers: []ports.TrafficProvider{p}, Logger: zerolog.Nop()})

	m, err := BuildDistanceMatrix(context.Background(), points, e, MatrixOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(4), p.Batches())
	assert.Equal(t, int64(0), p.Queries())
	assert.Equal(t, 5000.0, m[2][3].DistanceMeters)
	assert.Equal(t, "mock", m[3][0].Source)
}

func TestBuildDistanceMatrixWithPlainEstimator(t *testing.T) {
	points := []domain.Coordinates{*north(0), *north(1), *north(2)}
	e := constEstimator{cost: domain.TravelCost{DistanceMeters: 7}}

	m, err := BuildDistanceMatrix(context.Background(), points, e, MatrixOptions{})
	require.NoError(t, err)

	assert.Equal(t, 7.0, m[0][2].DistanceMeters)
	assert.Zero(t, m[1][1].DistanceMeters)
}

func TestBuildDistanceMatrixCancelled(t *testing.T) {
	points := []domain.Coordinates{*north(0), *north(1), *north(2)}
	e := NewEstimator(EstimatorConfig{Logger: zerolog.Nop()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildDistanceMatrix(ctx, points, e, MatrixOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestMatrixEstimatorServesPrecomputedLegs(t *testing.T) {
	points := []domain.Coordinates{*north(0), *north(1)}
	m := DistanceMatrix{
		{{}, {DistanceMeters: 42}},
		{{DistanceMeters: 24}, {}},
	}
	fallback := constEstimator{cost: domain.TravelCost{DistanceMeters: -1}}
	e := newMatrixEstimator(points, m, fallback)

	assert.Equal(t, 42.0, e.Estimate(context.Background(), &points[0], &points[1]).DistanceMeters)
	assert.Equal(t, 24.0, e.Estimate(context.Background(), &points[1], &points[0]).DistanceMeters)
	assert.Equal(t, -1.0, e.Estimate(context.Background(), &points[0], north(7)).DistanceMeters)
	assert.Equal(t, -1.0, e.Estimate(context.Background(), nil, &points[0]).DistanceMeters)
}
