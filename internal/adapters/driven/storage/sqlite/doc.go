// Package sqlite provides a SQLite-backed vector store. Embeddings are
// stored as little-endian float32 blobs alongside note metadata; searches
// score every row with cosine similarity, which stays fast at the scale of
// a personal notes collection.
package sqlite
