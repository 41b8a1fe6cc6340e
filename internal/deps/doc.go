// Package deps checks for the external binaries captionburn shells out to.
package deps
