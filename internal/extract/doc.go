// Package extract selects and composes format extractors.
//
// Each supported format (pdf, docx, epub, plain text) has its own
// extractor package under extract/. The Registry dispatches on file
// extension; the Processor composes extraction, chunking and metadata
// merging into chunk records ready for embedding.
package extract
