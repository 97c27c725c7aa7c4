// Package sim provides the discrete-time SIR simulation engine for episim.
//
// # Reading Guide
//
//   - simulator.go: Simulator, the forward-Euler SIR engine (Reset, Step, Run)
//   - metrics.go: end-of-run outcome metrics (peak, attack rate) and printing
//
// # Architecture
//
// The sim package holds only the engine; everything around it lives in
// sub-packages:
//   - sim/calibrate/: estimation of beta and gamma from cumulative case records
//   - sim/region/: regions, their case history, validation, risk levels and the registry
//   - sim/export/: CSV and PNG renderings of a trajectory
//
// The engine performs no validation and returns no errors. Zero population
// turns Step into a no-op; callers are responsible for rejecting
// inconsistent case counts before calling Reset.
package sim
