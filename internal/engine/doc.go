// Package engine rewrites archives. A run opens one destination archive,
// runs the pre hook, copies every entry of every source archive in
// order (folding compiled units through the transformer chain) and runs
// the post hook. The destination is closed exactly once whatever
// happens; a failed run may leave a partial file behind.
package engine
