// Package transform defines the unit transformer contract and the chain
// that folds a payload through transformers in order. Transformers are
// built ahead of a run, in process or as clients of external plugins
// (gRPC, stdio); the engine never looks them up by itself.
package transform
