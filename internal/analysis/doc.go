// Package analysis runs modal analysis of nonlinear symbolic models.
//
// An [Analyzer] chains the pipeline a caller would otherwise assemble by hand:
//
//   - linearize the dynamics x' = f(x, p) about an operating point
//   - take the state matrix A = ∂f/∂x at that point
//   - compile A into a numeric function of the parameters (cached)
//   - solve the eigenproblem of A with an [EigenSolver]
//   - condense the eigenpairs into modes with [modal.ExtractModes]
//
// # Parameter Sweeps
//
// [Analyzer.Sweep] repeats the numeric half of the pipeline for a range of
// values of one parameter, in parallel. The symbolic half runs once:
//
//	points, err := a.Sweep(ctx, sys, xf, analysis.SweepSpec{
//	    Param:  "c",
//	    Values: analysis.Linspace(0, 2, 41),
//	})
//
// # Spectra
//
// [FreeResponse] and [PowerSpectrum] give a frequency-domain view of a set
// of modes, which makes the modal frequencies easy to check by eye.
package analysis
