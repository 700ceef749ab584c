// Package quizdex provides a Go client for the quizdex quiz service
// HTTP API.
//
// A client talks to a running quizdex instance: upload documents to
// build a library, then generate questions and grade answers against
// that library.
//
//	client, _ := quizdex.New("http://localhost:8080")
//
//	created, _ := client.Libraries().Create(ctx,
//	    quizdex.File{Name: "notes.md", Data: notes},
//	)
//
//	question, _ := client.Quiz(created.LibraryID).Ask(ctx)
//	verdict, _ := client.Quiz(created.LibraryID).Evaluate(ctx, question, "my answer")
//
// API errors are mapped back to sentinel errors; use errors.Is() to
// check, or unwrap to *APIError for the raw status and error code.
package quizdex
