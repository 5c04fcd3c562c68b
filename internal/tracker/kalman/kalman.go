// Package kalman implements the constant-velocity Kalman filter used by the
// bundled trackers. The state is 8-dimensional: four box measurement
// components followed by their velocities.
package kalman

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Space selects the measurement parameterisation.
type Space int

const (
	// SpaceXYAH measures (center x, center y, aspect ratio, height).
	SpaceXYAH Space = iota
	// SpaceXYWH measures (center x, center y, width, height).
	SpaceXYWH
)

const (
	ndim = 4

	stdWeightPosition = 1.0 / 20
	stdWeightVelocity = 1.0 / 160
)

// State is the filter mean and covariance for one track.
type State struct {
	Mean *mat.VecDense
	Cov  *mat.Dense
}

// Filter holds the fixed motion and observation matrices.
type Filter struct {
	space  Space
	motion *mat.Dense
	update *mat.Dense
}

func New(space Space) *Filter {
	motion := mat.NewDense(2*ndim, 2*ndim, nil)
	for i := 0; i < 2*ndim; i++ {
		motion.Set(i, i, 1)
	}
	for i := 0; i < ndim; i++ {
		motion.Set(i, ndim+i, 1)
	}
	update := mat.NewDense(ndim, 2*ndim, nil)
	for i := 0; i < ndim; i++ {
		update.Set(i, i, 1)
	}
	return &Filter{space: space, motion: motion, update: update}
}

func (f *Filter) Space() Space { return f.space }

// Initiate creates a track state from an unassociated measurement.
func (f *Filter) Initiate(z [4]float64) State {
	mean := mat.NewVecDense(2*ndim, nil)
	for i := 0; i < ndim; i++ {
		mean.SetVec(i, z[i])
	}
	pos, vel := f.noise(z, 2*stdWeightPosition, 10*stdWeightVelocity, 1e-2, 1e-5)
	cov := diagSquared(append(pos[:], vel[:]...))
	return State{Mean: mean, Cov: cov}
}

// Predict runs the prediction step in place.
func (f *Filter) Predict(s *State) {
	pos, vel := f.noise(f.Measurement(*s), stdWeightPosition, stdWeightVelocity, 1e-2, 1e-5)
	q := diagSquared(append(pos[:], vel[:]...))

	var mean mat.VecDense
	mean.MulVec(f.motion, s.Mean)

	var tmp, cov mat.Dense
	tmp.Mul(f.motion, s.Cov)
	cov.Mul(&tmp, f.motion.T())
	cov.Add(&cov, q)

	s.Mean = &mean
	s.Cov = &cov
}

// Update runs the correction step in place with measurement z.
func (f *Filter) Update(s *State, z [4]float64) error {
	projMean, projCov := f.project(*s)

	var inv mat.Dense
	if err := inv.Inverse(projCov); err != nil {
		return fmt.Errorf("kalman: innovation covariance: %w", err)
	}
	var pht, gain mat.Dense
	pht.Mul(s.Cov, f.update.T())
	gain.Mul(&pht, &inv)

	innov := mat.NewVecDense(ndim, nil)
	for i := 0; i < ndim; i++ {
		innov.SetVec(i, z[i]-projMean.AtVec(i))
	}
	var corr, mean mat.VecDense
	corr.MulVec(&gain, innov)
	mean.AddVec(s.Mean, &corr)

	var ks, kskt, cov mat.Dense
	ks.Mul(&gain, projCov)
	kskt.Mul(&ks, gain.T())
	cov.Sub(s.Cov, &kskt)

	s.Mean = &mean
	s.Cov = &cov
	return nil
}

// Measurement returns the measurement-space part of the mean.
func (f *Filter) Measurement(s State) [4]float64 {
	var z [4]float64
	for i := 0; i < ndim; i++ {
		z[i] = s.Mean.AtVec(i)
	}
	return z
}

// ZeroSizeVelocity clears the velocity of the last measurement component.
// Lost tracks stop growing or shrinking while they coast.
func (f *Filter) ZeroSizeVelocity(s *State) {
	s.Mean.SetVec(2*ndim-1, 0)
}

func (f *Filter) project(s State) (*mat.VecDense, *mat.Dense) {
	pos, _ := f.noise(f.Measurement(s), stdWeightPosition, stdWeightVelocity, 1e-1, 1e-5)
	r := diagSquared(pos[:])

	var mean mat.VecDense
	mean.MulVec(f.update, s.Mean)

	var tmp, cov mat.Dense
	tmp.Mul(f.update, s.Cov)
	cov.Mul(&tmp, f.update.T())
	cov.Add(&cov, r)
	return &mean, &cov
}

// noise returns the position and velocity standard deviations scaled by the
// box size. XYAH scales everything by height and uses fixed values for the
// aspect ratio; XYWH scales x terms by width and y terms by height.
func (f *Filter) noise(z [4]float64, wPos, wVel, aspectPos, aspectVel float64) ([4]float64, [4]float64) {
	if f.space == SpaceXYWH {
		w, h := z[2], z[3]
		return [4]float64{wPos * w, wPos * h, wPos * w, wPos * h},
			[4]float64{wVel * w, wVel * h, wVel * w, wVel * h}
	}
	h := z[3]
	return [4]float64{wPos * h, wPos * h, aspectPos, wPos * h},
		[4]float64{wVel * h, wVel * h, aspectVel, wVel * h}
}

func diagSquared(std []float64) *mat.Dense {
	n := len(std)
	d := mat.NewDense(n, n, nil)
	for i, v := range std {
		d.Set(i, i, v*v)
	}
	return d
}
