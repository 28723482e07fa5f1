// Package conv provides checked integer conversions.
//
// Option values arrive as int and are stored as the fixed-width types the
// tree uses; these helpers reject values that would wrap.
package conv
