package canvas

// Version is the library version, stamped into adapters and the CLI.
var Version = "0.1.0"
