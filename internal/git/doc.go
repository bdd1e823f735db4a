// Package git reads the revision of the repository that holds an app's
// source, for version labels and page metadata.
package git
