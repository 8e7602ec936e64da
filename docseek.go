// Package docseek answers batches of natural language questions about a
// link-structured website. It reads pages, caches them with semantic
// embeddings, asks a language model whether a page holds the answer and,
// when it does not, which link to follow next.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, goquery/).
package docseek
