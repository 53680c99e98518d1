// Package model defines the layered-document abstraction shared by the
// autosig packages: pixel-space geometry, layers with optional bounds, and
// the Document interface that format readers (such as the psd package)
// implement and the detect package consumes.
package model
