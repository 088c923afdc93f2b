// Package oraculum is a local retrieval-augmented generation pipeline.
//
// It indexes a directory of plain-text documents into a persistent
// vector store and answers questions about them: the question is
// embedded, the nearest chunks are retrieved, and a local language
// model generates an answer grounded in that context. Everything runs
// against local OpenAI-compatible servers; no data leaves the machine.
//
// The Pipeline type is the public entry point:
//
//	cfg := config.Default()
//	pipeline, err := oraculum.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pipeline.Close()
//
//	report, err := pipeline.IndexDocuments(ctx, false)
//	answer, err := pipeline.Query(ctx, "what does the design doc say about retries?", oraculum.QueryOptions{ShowSources: true})
package oraculum
