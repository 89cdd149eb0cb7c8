package weft

// Version is the library version, overridable at build time via
// -ldflags "-X github.com/weftlabs/weft.Version=...".
var Version = "0.1.0"
