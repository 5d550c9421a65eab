package model

// Version is overwritten at build time with -ldflags "-X knipclean/internal/model.Version=...".
var Version = "0.3.0"
