// Command captionburn is the operator CLI: it compiles caption files into ASS
// tracks, burns them locally without a daemon, inspects job history through
// the daemon API, and reports dependency status.
package main
