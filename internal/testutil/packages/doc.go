// Package packages provides a fluent builder and fixtures for catalog test
// data.
//
// # Basic Usage
//
//	entry := packages.New(t, "Inference Node", "QP-INF").
//		WithSetupPrice(2500).
//		WithRule(model.CurveLinear, 30, 26280).
//		WithNew(3).
//		WithUsed(13140, 1).
//		Entry()
//
//	db := testutil.SetupTestDB(t, entry)
//
// # Fixtures
//
// Standard returns one package per pricing case (each curve, a stored
// override, an invalid rule and a package without options), keyed by the
// SKU constants in this package.
package packages
