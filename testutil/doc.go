// Package testutil runs components inside tests.
//
// Start brings a component up and stops it when the test ends:
//
//	func TestStore(t *testing.T) {
//	    p := testutil.Start(t, newPersistence(cfg, logger.Nop()))
//	    // p is stopped by t.Cleanup
//	}
//
// StartAll does the same for several components, stopping them in
// reverse order.
package testutil
