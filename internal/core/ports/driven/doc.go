// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor: Turns source files (PDF, EPUB, DOCX, TXT) into plain text
//   - VectorStore: Vector storage and nearest-neighbour search
//   - BookStore: Library record persistence
//   - DocumentStore: Chunk persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, the vector
//     store falls back to its own embedder when it has one.
//   - LLMService: Language model operations. Without it, queries return
//     raw retrieved passages and study tools are disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
