package config

// Version is set during build via ldflags
var Version = "dev"
