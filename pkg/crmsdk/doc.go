// Package crmsdk is the Go client for the leadboard CRM API.
//
// A Client handles unauthenticated calls (signup, login, health) and yields a
// Session, which carries the tokens, refreshes them before they expire and
// exposes the tenant-scoped resources. A Board keeps a local copy of one
// company's pipeline and applies stage moves optimistically.
//
//	c := crmsdk.NewClient("http://localhost:8080")
//	s, err := c.Login(ctx, crmsdk.LoginRequest{Email: "ana@example.com", Password: "..."})
//	board := crmsdk.NewBoard(s)
//	if err := board.Refresh(ctx); err != nil { ... }
//	err = board.MoveLead(ctx, leadID, stageID)
package crmsdk
