// Package workspace manages staging directories for publishing.
//
// A site is rendered into a hidden timestamped directory beside its final
// location and then moved into it entry by entry. Files in the final
// location that the stage does not contain are kept.
package workspace
